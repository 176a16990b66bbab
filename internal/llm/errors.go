package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProvidersConfigured indicates that no provider in the priority list
// has a credential. It is returned before any network call is made.
var ErrNoProvidersConfigured = errors.New("no LLM providers configured")

// ErrCredentialMissing indicates a provider was skipped because its
// credential is not set.
type ErrCredentialMissing struct {
	Provider string
	EnvVar   string
}

func (e *ErrCredentialMissing) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("%s credential not found (set %s)", e.Provider, e.EnvVar)
	}
	return fmt.Sprintf("%s credential not found", e.Provider)
}

// ErrRequestFailed indicates the provider answered with a non-success
// HTTP status.
type ErrRequestFailed struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ErrRequestFailed) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// ErrUnexpectedResponse indicates a success status whose body lacks the
// provider's expected success markers.
type ErrUnexpectedResponse struct {
	Provider string
	Body     string
	Err      error
}

func (e *ErrUnexpectedResponse) Error() string {
	return fmt.Sprintf("unexpected %s response: %v", e.Provider, e.Err)
}

func (e *ErrUnexpectedResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider unavailable: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s provider unavailable", e.Provider)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Attempt records the outcome of one provider in a dispatch.
type Attempt struct {
	Provider string
	Err      error
}

// Reason returns the failure reason for display.
func (a Attempt) Reason() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// ErrAllProvidersFailed is returned when every provider in the priority
// list failed or was skipped. Attempts preserves priority order.
type ErrAllProvidersFailed struct {
	Attempts []Attempt
}

func (e *ErrAllProvidersFailed) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.Provider, a.Reason())
	}
	return fmt.Sprintf("all LLM providers failed. %s", strings.Join(parts, "; "))
}

// Unwrap exposes the per-provider errors to errors.Is and errors.As.
func (e *ErrAllProvidersFailed) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}
