package llm

import (
	"context"
)

// Provider is the uniform capability every LLM integration exposes to the
// Dispatcher. An implementation owns its wire format: it builds the
// provider-specific request body, performs one synchronous call, and
// normalizes the response into plain text.
type Provider interface {
	// Generate sends the prompt to the LLM and returns the generated text.
	// Failures are reported with the typed errors in errors.go.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider name used in configuration and error
	// reporting, e.g. "huggingface" or "gemini".
	Name() string

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// Prompt is the full instruction document. It is sent as a single
	// user turn.
	Prompt string

	// MaxTokens is the maximum number of tokens in the response.
	// Providers whose wire contract has no such field ignore it.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Zero leaves the provider default in place.
	Temperature float64
}

// Response holds the LLM's output.
type Response struct {
	// Text is the generated text, unparsed.
	Text string

	// Usage reports token consumption when the provider returns it.
	Usage Usage

	// Model is the actual model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// unconfiguredProvider occupies a slot in the priority list for a provider
// whose credential is absent. The Dispatcher never calls it.
type unconfiguredProvider struct {
	name   string
	envVar string
}

// Unconfigured returns a placeholder Provider for a provider whose
// credential is missing. The Dispatcher skips it and records an
// ErrCredentialMissing reason instead of attempting a network call.
func Unconfigured(name, envVar string) Provider {
	return &unconfiguredProvider{name: name, envVar: envVar}
}

func (u *unconfiguredProvider) Generate(_ context.Context, _ Request) (*Response, error) {
	return nil, u.err()
}

func (u *unconfiguredProvider) Name() string { return u.name }

func (u *unconfiguredProvider) ModelID() string { return "" }

func (u *unconfiguredProvider) err() error {
	return &ErrCredentialMissing{Provider: u.name, EnvVar: u.envVar}
}

// IsConfigured reports whether p can be attempted.
func IsConfigured(p Provider) bool {
	_, missing := p.(*unconfiguredProvider)
	return !missing
}
