package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/abhisek/intertest/internal/llm"
	"github.com/abhisek/intertest/internal/testgen"
)

// maxRequestBytes caps the JSON body of a generation request.
const maxRequestBytes = 1 << 20

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Attempts []attemptView `json:"attempts,omitempty"`
}

type attemptView struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

type testView struct {
	Text     string        `json:"text"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	RunID    string        `json:"run_id"`
	Failures []attemptView `json:"failures"`
}

type providerView struct {
	Name       string `json:"name"`
	Model      string `json:"model,omitempty"`
	Configured bool   `json:"configured"`
	EnvVar     string `json:"env_var,omitempty"`
	Priority   int    `json:"priority"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, apiErr *apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiResponse{Error: apiErr}); err != nil {
		s.logger.WithError(err).Error("failed to encode error response")
	}
}

func attemptViews(attempts []llm.Attempt) []attemptView {
	out := make([]attemptView, len(attempts))
	for i, a := range attempts {
		out[i] = attemptView{Provider: a.Provider, Reason: a.Reason()}
	}
	return out
}

// Health handler

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Generation handlers

func (s *Server) handleGenerateTest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, &apiError{
			Code:    "invalid_request",
			Message: "request body too large",
		})
		return
	}

	req, err := testgen.ParseRequest(raw)
	if err != nil {
		s.respondGenerateError(w, err)
		return
	}

	// Bounds the whole dispatch, every provider attempt included.
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	test, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.respondGenerateError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, testView{
		Text:     test.Text,
		Provider: test.Provider,
		Model:    test.Model,
		RunID:    test.RunID,
		Failures: attemptViews(test.Failures),
	})
}

func (s *Server) respondGenerateError(w http.ResponseWriter, err error) {
	var (
		valErr *testgen.ValidationError
		all    *llm.ErrAllProvidersFailed
	)

	switch {
	case errors.As(err, &valErr):
		s.respondError(w, http.StatusBadRequest, &apiError{
			Code:    "validation_error",
			Message: valErr.Error(),
		})
	case errors.Is(err, llm.ErrNoProvidersConfigured):
		s.respondError(w, http.StatusServiceUnavailable, &apiError{
			Code:    "no_providers_configured",
			Message: llm.NoProvidersMessage(s.providerNames()...),
		})
	case errors.As(err, &all):
		s.respondError(w, http.StatusBadGateway, &apiError{
			Code:     "all_providers_failed",
			Message:  all.Error(),
			Attempts: attemptViews(all.Attempts),
		})
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, &apiError{
			Code:    "timeout",
			Message: "generation did not finish in time",
		})
	case errors.Is(err, context.Canceled):
		// Client went away.
		return
	default:
		s.logger.WithError(err).Error("failed to generate interview test")
		s.respondError(w, http.StatusInternalServerError, &apiError{
			Code:    "internal_error",
			Message: "failed to generate interview test",
		})
	}
}

// Catalog handlers

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	views := make([]providerView, len(s.providers))
	for i, p := range s.providers {
		views[i] = providerView{
			Name:       p.Name(),
			Model:      p.ModelID(),
			Configured: llm.IsConfigured(p),
			EnvVar:     llm.CredentialEnv(p.Name()),
			Priority:   i + 1,
		}
	}
	s.respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"domains":           testgen.Domains,
		"experience_levels": testgen.Levels,
		"mcq_count": map[string]int{
			"min": testgen.MinMCQ, "max": testgen.MaxMCQ, "default": testgen.DefaultMCQ,
		},
		"short_answer_count": map[string]int{
			"min": testgen.MinShortAnswer, "max": testgen.MaxShortAnswer, "default": testgen.DefaultShort,
		},
		"include_coding_default": true,
	})
}

func (s *Server) providerNames() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}
