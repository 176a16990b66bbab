package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements Provider against a local Ollama server using
// its non-streaming generate endpoint.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider. Hosts without a scheme
// are treated as plain HTTP.
func NewOllamaProvider(cfg OllamaConfig, timeout time.Duration) (*OllamaProvider, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}

	host := cfg.Host
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}

	client := api.NewClient(base, &http.Client{
		Timeout:   timeout,
		Transport: statusRecorder{next: http.DefaultTransport},
	})

	return &OllamaProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	stream := false
	genReq := &api.GenerateRequest{
		Model:  p.model,
		Prompt: req.Prompt,
		Stream: &stream,
	}

	options := map[string]any{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if len(options) > 0 {
		genReq.Options = options
	}

	var (
		text   strings.Builder
		last   api.GenerateResponse
		status int
	)
	ctx = context.WithValue(ctx, statusKey{}, &status)
	err := p.client.Generate(ctx, genReq, func(r api.GenerateResponse) error {
		text.WriteString(r.Response)
		last = r
		return nil
	})
	if err != nil {
		return nil, mapOllamaError(err, status)
	}

	if text.Len() == 0 && !last.Done {
		return nil, &ErrUnexpectedResponse{
			Provider: ProviderOllama,
			Err:      errors.New("empty ollama response"),
		}
	}

	model := last.Model
	if model == "" {
		model = p.model
	}

	return &Response{
		Text: text.String(),
		Usage: Usage{
			InputTokens:  last.PromptEvalCount,
			OutputTokens: last.EvalCount,
			TotalTokens:  last.PromptEvalCount + last.EvalCount,
		},
		Model: model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

// mapOllamaError classifies a client error. The ollama client returns the
// body's "error" field as a plain error before it checks the status, so
// the status recorded by statusRecorder is used for those.
func mapOllamaError(err error, status int) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &ErrRequestFailed{
			Provider:   ProviderOllama,
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.ErrorMessage,
		}
	}
	if status >= http.StatusBadRequest {
		return &ErrRequestFailed{
			Provider:   ProviderOllama,
			StatusCode: status,
			Body:       err.Error(),
		}
	}
	return &ErrProviderUnavailable{Provider: ProviderOllama, Err: err}
}

type statusKey struct{}

// statusRecorder stores the response status in the *int carried by the
// request context under statusKey.
type statusRecorder struct {
	next http.RoundTripper
}

func (t statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if resp != nil {
		if dst, ok := req.Context().Value(statusKey{}).(*int); ok {
			*dst = resp.StatusCode
		}
	}
	return resp, err
}
