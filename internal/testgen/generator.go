package testgen

import (
	"context"
	"fmt"

	"github.com/abhisek/intertest/internal/llm"
)

// Purpose labels interview-test generation in the attempt event log.
const Purpose = "interview-test"

// Dispatcher sends a prompt to the configured providers.
type Dispatcher interface {
	Dispatch(ctx context.Context, req llm.Request) (*llm.Result, error)
}

// Config controls the behavior of the Generator.
type Config struct {
	// MaxTokens is the token budget for the LLM response. Providers whose
	// wire contract has no such field ignore it.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0). Zero keeps the
	// provider default.
	Temperature float64
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// Test is a generated interview test. Text is returned verbatim from the
// provider and is never parsed.
type Test struct {
	Text     string
	Provider string
	Model    string
	RunID    string

	// Failures lists the providers tried before the one that answered.
	Failures []llm.Attempt
}

// Generator turns a TestRequest into a Test via the dispatcher.
type Generator struct {
	dispatcher Dispatcher
	config     Config
}

// New creates a Generator.
func New(d Dispatcher, cfg Config) *Generator {
	return &Generator{dispatcher: d, config: cfg}
}

// Generate validates req, builds the prompt and dispatches it. A blank job
// description returns ErrBlankJobDescription without contacting any
// provider. Dispatch failures keep their llm error types.
func (g *Generator) Generate(ctx context.Context, req TestRequest) (*Test, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Normalize legacy level labels before they reach the prompt.
	level, err := ParseExperienceLevel(string(req.ExperienceLevel))
	if err != nil {
		return nil, err
	}
	req.ExperienceLevel = level

	ctx = llm.WithPurpose(ctx, Purpose)

	res, err := g.dispatcher.Dispatch(ctx, llm.Request{
		Prompt:      BuildPrompt(req),
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate interview test: %w", err)
	}

	return &Test{
		Text:     res.Text,
		Provider: res.Provider,
		Model:    res.Model,
		RunID:    res.RunID,
		Failures: res.Failures,
	}, nil
}
