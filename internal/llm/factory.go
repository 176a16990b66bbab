package llm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/intertest/internal/store"
)

// NewProviders builds the priority list from configuration. Providers
// without a credential occupy their slot as Unconfigured placeholders.
// Configured providers are wrapped with event logging when repo is non-nil.
func NewProviders(cfg Config, repo store.EventRepo, logger logrus.FieldLogger) ([]Provider, error) {
	providers := make([]Provider, 0, len(cfg.Providers))

	for _, name := range cfg.Providers {
		if !cfg.HasCredential(name) {
			providers = append(providers, Unconfigured(name, CredentialEnv(name)))
			continue
		}

		base, err := newProvider(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", name, err)
		}

		if repo != nil {
			base = WithLogging(base, repo, logger)
		}
		providers = append(providers, base)
	}

	return providers, nil
}

// NewDispatcherFromConfig builds the providers and wraps them in a
// Dispatcher using the configured attempt timeout.
func NewDispatcherFromConfig(cfg Config, repo store.EventRepo, logger logrus.FieldLogger) (*Dispatcher, error) {
	providers, err := NewProviders(cfg, repo, logger)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(providers,
		WithAttemptTimeout(cfg.Timeout),
		WithLogger(logger),
	), nil
}

func newProvider(name string, cfg Config) (Provider, error) {
	switch name {
	case ProviderHuggingFace:
		return NewHuggingFaceProvider(cfg.HuggingFace, cfg.Timeout)
	case ProviderGemini:
		return NewGeminiProvider(cfg.Gemini, cfg.Timeout)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAI, cfg.Timeout)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic, cfg.Timeout)
	case ProviderOllama:
		return NewOllamaProvider(cfg.Ollama, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
}
