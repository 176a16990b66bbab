package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in Config.Providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderOllama      = "ollama"
)

// credentialEnv names the environment variable that enables each provider.
var credentialEnv = map[string]string{
	ProviderHuggingFace: "HF_API_KEY",
	ProviderGemini:      "GEMINI_API_KEY",
	ProviderOpenAI:      "OPENAI_API_KEY",
	ProviderAnthropic:   "ANTHROPIC_API_KEY",
	ProviderOllama:      "OLLAMA_HOST",
}

// Config holds all LLM provider configuration. It is built once at process
// start and treated as immutable afterwards.
type Config struct {
	// Providers is the fallback priority order. The first entry is tried
	// first. Default: huggingface, gemini.
	Providers []string `yaml:"providers"`

	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	Ollama      OllamaConfig      `yaml:"ollama"`

	// Timeout bounds a single provider attempt. Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

// HuggingFaceConfig holds Hugging Face Inference API configuration.
type HuggingFaceConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "HuggingFaceH4/zephyr-7b-beta"
	BaseURL string `yaml:"base_url"` // Default: "https://api-inference.huggingface.co/models"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gemini-1.5-flash"
	BaseURL string `yaml:"base_url"` // Default: "https://generativelanguage.googleapis.com/v1beta/models"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OllamaConfig holds configuration for a local Ollama server. The host
// doubles as the credential: an empty host disables the provider.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"` // Default: "llama3.1"
}

// DefaultConfig returns a Config with sensible defaults and no credentials.
func DefaultConfig() Config {
	return Config{
		Providers: []string{ProviderHuggingFace, ProviderGemini},
		HuggingFace: HuggingFaceConfig{
			Model:   defaultHuggingFaceModel,
			BaseURL: defaultHuggingFaceBaseURL,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-1.5-flash",
			BaseURL: defaultGeminiBaseURL,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Ollama: OllamaConfig{
			Model: "llama3.1",
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

// LoadConfig builds a Config from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if p := os.Getenv("INTERTEST_PROVIDERS"); p != "" {
		cfg.Providers = ParseProviderList(p)
	}
	if t := os.Getenv("INTERTEST_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	if k := os.Getenv("HF_API_KEY"); k != "" {
		cfg.HuggingFace.APIKey = k
	}
	if m := os.Getenv("INTERTEST_HF_MODEL"); m != "" {
		cfg.HuggingFace.Model = m
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("INTERTEST_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("INTERTEST_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("INTERTEST_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("INTERTEST_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if h := os.Getenv("OLLAMA_HOST"); h != "" {
		cfg.Ollama.Host = h
	}
	if m := os.Getenv("INTERTEST_OLLAMA_MODEL"); m != "" {
		cfg.Ollama.Model = m
	}
}

// ParseProviderList splits a comma separated provider list, trimming
// whitespace and dropping empty entries.
func ParseProviderList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasCredential reports whether the named provider has its credential set.
func (c Config) HasCredential(provider string) bool {
	switch provider {
	case ProviderHuggingFace:
		return c.HuggingFace.APIKey != ""
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderOpenAI:
		return c.OpenAI.APIKey != ""
	case ProviderAnthropic:
		return c.Anthropic.APIKey != ""
	case ProviderOllama:
		return c.Ollama.Host != ""
	}
	return false
}

// AnyCredential reports whether at least one provider in the priority
// list has a credential.
func (c Config) AnyCredential() bool {
	for _, p := range c.Providers {
		if c.HasCredential(p) {
			return true
		}
	}
	return false
}

// CredentialEnv returns the environment variable that enables provider.
func CredentialEnv(provider string) string {
	return credentialEnv[provider]
}

// Validate checks the priority list and timeout. Missing credentials are
// not an error: they disable the affected provider only.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if _, ok := credentialEnv[p]; !ok {
			return fmt.Errorf("unknown LLM provider: %q", p)
		}
		if seen[p] {
			return fmt.Errorf("LLM provider %q listed more than once", p)
		}
		seen[p] = true
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// CredentialHint names the variables that would enable the given
// providers, e.g. "HF_API_KEY or GEMINI_API_KEY".
func CredentialHint(providers ...string) string {
	vars := make([]string, 0, len(providers))
	for _, p := range providers {
		if v := credentialEnv[p]; v != "" {
			vars = append(vars, v)
		}
	}
	switch len(vars) {
	case 0:
		return "a provider credential"
	case 1:
		return vars[0]
	default:
		return strings.Join(vars[:len(vars)-1], ", ") + " or " + vars[len(vars)-1]
	}
}

// NoProvidersMessage is the user-facing text shown when none of the given
// providers has a credential.
func NoProvidersMessage(providers ...string) string {
	hint := CredentialHint(providers...)
	if strings.Contains(hint, " or ") {
		hint = "either " + hint
	}
	return fmt.Sprintf("No API keys configured. Please set %s in your environment.", hint)
}
