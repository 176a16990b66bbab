package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-1.5-flash",
	"gemini-pro":   "gemini-1.5-pro",
}

// GeminiProvider implements Provider against the Gemini generateContent
// REST endpoint. The API key travels in the query string.
//
// Response handling is strict: a 200 body without candidates is a failure.
type GeminiProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// NewGeminiProvider creates a new Gemini provider. timeout bounds each
// HTTP exchange.
func NewGeminiProvider(cfg GeminiConfig, timeout time.Duration) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultGeminiBaseURL
	}

	return &GeminiProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		model:   resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeJSON(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Provider: ProviderGemini, Err: redactKey(err, p.apiKey)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrProviderUnavailable{Provider: ProviderGemini, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ErrRequestFailed{
			Provider:   ProviderGemini,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	return p.parseResponse(raw)
}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func (p *GeminiProvider) endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, p.model, url.QueryEscape(p.apiKey))
}

// parseResponse extracts candidates[0].content.parts[0].text.
func (p *GeminiProvider) parseResponse(raw []byte) (*Response, error) {
	var result genai.GenerateContentResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ErrUnexpectedResponse{
			Provider: ProviderGemini,
			Body:     string(raw),
			Err:      fmt.Errorf("invalid JSON: %w", err),
		}
	}

	if len(result.Candidates) == 0 {
		return nil, &ErrUnexpectedResponse{
			Provider: ProviderGemini,
			Body:     string(raw),
			Err:      errors.New("no candidates in gemini response"),
		}
	}

	first := result.Candidates[0]
	if first == nil || first.Content == nil || len(first.Content.Parts) == 0 || first.Content.Parts[0] == nil {
		return nil, &ErrUnexpectedResponse{
			Provider: ProviderGemini,
			Body:     string(raw),
			Err:      errors.New("first gemini candidate has no content parts"),
		}
	}

	if first.Content.Parts[0].Text == "" {
		return nil, &ErrUnexpectedResponse{
			Provider: ProviderGemini,
			Body:     string(raw),
			Err:      errors.New("first gemini candidate part has no text"),
		}
	}

	out := &Response{
		Text:  first.Content.Parts[0].Text,
		Model: p.model,
	}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

// redactKey strips the API key from transport errors, which quote the URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	redacted := strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	redacted = strings.ReplaceAll(redacted, key, "REDACTED")
	if redacted == msg {
		return err
	}
	return &redactedError{msg: redacted, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	// If not in the map, use as-is (allows direct model IDs).
	return name
}
