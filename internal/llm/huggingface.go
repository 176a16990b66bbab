package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceModel   = "HuggingFaceH4/zephyr-7b-beta"
)

// HuggingFaceProvider implements Provider against the Hugging Face
// Inference API text-generation endpoint.
//
// Response handling is lenient: a 200 body that does not carry a
// generated_text field is returned verbatim as the generated text rather
// than treated as a failure.
type HuggingFaceProvider struct {
	client   *http.Client
	endpoint string
	token    string
	model    string
}

type huggingFaceRequest struct {
	Inputs  string             `json:"inputs"`
	Options huggingFaceOptions `json:"options"`
}

type huggingFaceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHuggingFaceProvider creates a new Hugging Face provider. timeout
// bounds each HTTP exchange.
func NewHuggingFaceProvider(cfg HuggingFaceConfig, timeout time.Duration) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface API token is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultHuggingFaceModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultHuggingFaceBaseURL
	}

	return &HuggingFaceProvider{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(base, "/") + "/" + model,
		token:    cfg.APIKey,
		model:    model,
	}, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeJSON(huggingFaceRequest{
		Inputs:  req.Prompt,
		Options: huggingFaceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal huggingface request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build huggingface request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ErrProviderUnavailable{Provider: ProviderHuggingFace, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrProviderUnavailable{Provider: ProviderHuggingFace, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ErrRequestFailed{
			Provider:   ProviderHuggingFace,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	text, err := extractHuggingFaceText(raw)
	if err != nil {
		return nil, err
	}

	return &Response{Text: text, Model: p.model}, nil
}

func (p *HuggingFaceProvider) Name() string {
	return ProviderHuggingFace
}

func (p *HuggingFaceProvider) ModelID() string {
	return p.model
}

// extractHuggingFaceText pulls generated_text out of either a list whose
// first element carries it or an object carrying it. Any other JSON body is
// returned as-is. Only a body that is not JSON at all is an error.
func extractHuggingFaceText(raw []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &ErrUnexpectedResponse{
			Provider: ProviderHuggingFace,
			Body:     string(raw),
			Err:      fmt.Errorf("invalid JSON: %w", err),
		}
	}

	switch v := decoded.(type) {
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				if text, ok := first["generated_text"].(string); ok {
					return text, nil
				}
			}
		}
	case map[string]any:
		if text, ok := v["generated_text"].(string); ok {
			return text, nil
		}
	}

	return strings.TrimSpace(string(raw)), nil
}

// encodeJSON marshals v without HTML escaping so prompts reach the
// provider exactly as written.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
