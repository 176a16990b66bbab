package testgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/intertest/internal/llm"
)

func TestGenerate_ReturnsProviderText(t *testing.T) {
	mock := llm.NewMockProvider("gemini", llm.MockResponse{Text: "## MCQs\n1. ..."})
	gen := New(llm.NewDispatcher([]llm.Provider{mock}), DefaultConfig())

	test, err := gen.Generate(context.Background(), exampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if test.Text != "## MCQs\n1. ..." {
		t.Errorf("text = %q", test.Text)
	}
	if test.Provider != "gemini" {
		t.Errorf("provider = %q", test.Provider)
	}
	if test.RunID == "" {
		t.Error("run id not propagated")
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	call := mock.Calls[0]
	if call.Prompt != BuildPrompt(exampleRequest()) {
		t.Error("dispatched prompt differs from BuildPrompt output")
	}
	if call.MaxTokens != 4096 || call.Temperature != 0.7 {
		t.Errorf("request settings = %d/%v", call.MaxTokens, call.Temperature)
	}
}

func TestGenerate_BlankJobDescriptionNeverDispatches(t *testing.T) {
	mock := llm.NewMockProvider("gemini", llm.MockResponse{Text: "unused"})
	gen := New(llm.NewDispatcher([]llm.Provider{mock}), DefaultConfig())

	req := exampleRequest()
	req.JobDescription = "   "
	_, err := gen.Generate(context.Background(), req)
	if !errors.Is(err, ErrBlankJobDescription) {
		t.Fatalf("expected ErrBlankJobDescription, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("provider called %d times", mock.CallCount())
	}
}

func TestGenerate_NormalizesLegacyLevel(t *testing.T) {
	mock := llm.NewMockProvider("gemini", llm.MockResponse{Text: "ok"})
	gen := New(llm.NewDispatcher([]llm.Provider{mock}), DefaultConfig())

	req := exampleRequest()
	req.ExperienceLevel = "More than 5"
	if _, err := gen.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Prompt, "Candidate Experience Level: 5+") {
		t.Error("legacy level label was not normalized")
	}
}

func TestGenerate_PropagatesDispatchErrors(t *testing.T) {
	gen := New(llm.NewDispatcher([]llm.Provider{
		llm.Unconfigured(llm.ProviderHuggingFace, "HF_API_KEY"),
		llm.Unconfigured(llm.ProviderGemini, "GEMINI_API_KEY"),
	}), DefaultConfig())

	_, err := gen.Generate(context.Background(), exampleRequest())
	if !errors.Is(err, llm.ErrNoProvidersConfigured) {
		t.Fatalf("expected ErrNoProvidersConfigured, got %v", err)
	}

	failing := llm.NewMockProvider("huggingface", llm.MockResponse{
		Err: &llm.ErrRequestFailed{Provider: "huggingface", StatusCode: 500, Body: "down"},
	})
	gen = New(llm.NewDispatcher([]llm.Provider{failing}), DefaultConfig())

	_, err = gen.Generate(context.Background(), exampleRequest())
	var all *llm.ErrAllProvidersFailed
	if !errors.As(err, &all) {
		t.Fatalf("expected ErrAllProvidersFailed, got %T %v", err, err)
	}
	if len(all.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(all.Attempts))
	}
}

type purposeRecorder struct {
	purpose string
}

func (p *purposeRecorder) Dispatch(ctx context.Context, _ llm.Request) (*llm.Result, error) {
	p.purpose = llm.PurposeFrom(ctx)
	return &llm.Result{Text: "ok", Provider: "rec"}, nil
}

func TestGenerate_TagsPurpose(t *testing.T) {
	rec := &purposeRecorder{}
	if _, err := New(rec, DefaultConfig()).Generate(context.Background(), exampleRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.purpose != Purpose {
		t.Errorf("purpose = %q, want %q", rec.purpose, Purpose)
	}
}
