package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 60 * time.Second

// Result is the outcome of a successful dispatch.
type Result struct {
	// RunID groups the attempts of this dispatch in the event log.
	RunID string

	Text     string
	Provider string
	Model    string
	Usage    Usage

	// Failures lists the providers that failed or were skipped before the
	// successful one, in priority order.
	Failures []Attempt
}

// Dispatcher tries an ordered list of providers one at a time and returns
// the first success. Later providers are only reached when every earlier
// one failed or has no credential.
type Dispatcher struct {
	providers []Provider
	timeout   time.Duration
	logger    logrus.FieldLogger
	newRunID  func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAttemptTimeout sets the per-attempt timeout. Non-positive values keep
// the default.
func WithAttemptTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l logrus.FieldLogger) DispatcherOption {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher over providers in priority order.
func NewDispatcher(providers []Provider, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		providers: append([]Provider(nil), providers...),
		timeout:   DefaultAttemptTimeout,
		logger:    logrus.StandardLogger(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Providers returns the priority list.
func (d *Dispatcher) Providers() []Provider {
	return append([]Provider(nil), d.providers...)
}

// Dispatch sends req to each configured provider in order until one
// succeeds. It returns ErrNoProvidersConfigured without any network call
// when no provider has a credential, and *ErrAllProvidersFailed when every
// provider failed. A canceled ctx ends the dispatch with ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if !d.anyConfigured() {
		return nil, ErrNoProvidersConfigured
	}

	runID := d.newRunID()
	ctx = WithRunID(ctx, runID)
	log := d.logger.WithField("run_id", runID)

	var attempts []Attempt
	for _, p := range d.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := p.Name()

		if !IsConfigured(p) {
			_, err := p.Generate(ctx, req)
			log.WithField("provider", name).Debug("skipping provider without credential")
			attempts = append(attempts, Attempt{Provider: name, Err: err})
			continue
		}

		start := time.Now()
		resp, err := d.attempt(ctx, p, req)
		plog := log.WithFields(logrus.Fields{
			"provider":   name,
			"latency_ms": time.Since(start).Milliseconds(),
		})

		if err != nil {
			plog.WithError(err).Warn("provider attempt failed")
			attempts = append(attempts, Attempt{Provider: name, Err: err})
			continue
		}

		plog.Info("provider attempt succeeded")

		model := resp.Model
		if model == "" {
			model = p.ModelID()
		}
		return &Result{
			RunID:    runID,
			Text:     resp.Text,
			Provider: name,
			Model:    model,
			Usage:    resp.Usage,
			Failures: attempts,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, &ErrAllProvidersFailed{Attempts: attempts}
}

// attempt runs a single provider call under the per-attempt timeout.
func (d *Dispatcher) attempt(ctx context.Context, p Provider, req Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := p.Generate(attemptCtx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &ErrProviderUnavailable{
				Provider: p.Name(),
				Err:      fmt.Errorf("timed out after %s: %w", d.timeout, err),
			}
		}
		return nil, err
	}
	if resp == nil {
		return nil, &ErrUnexpectedResponse{
			Provider: p.Name(),
			Err:      errors.New("provider returned no response"),
		}
	}
	return resp, nil
}

func (d *Dispatcher) anyConfigured() bool {
	for _, p := range d.providers {
		if IsConfigured(p) {
			return true
		}
	}
	return false
}
