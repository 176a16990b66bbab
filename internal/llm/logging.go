package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/intertest/internal/store"
)

// LoggingProvider is a decorator that records every provider attempt as an
// event. Prompts and generated text are never stored.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    logrus.FieldLogger
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo, logger logrus.FieldLogger) Provider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.AttemptEventData{
		RunID:     RunIDFrom(ctx),
		Provider:  l.inner.Name(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		var reqErr *ErrRequestFailed
		if errors.As(err, &reqErr) {
			data.StatusCode = reqErr.StatusCode
		}
	}

	// Record the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendAttempt(context.WithoutCancel(ctx), data); logErr != nil {
		l.logger.WithError(logErr).Warn("failed to record provider attempt")
	}

	return resp, err
}

func (l *LoggingProvider) Name() string {
	return l.inner.Name()
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
