package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit    int       // max results (0 = unlimited)
	Purpose  string    // exact purpose match
	Provider string    // exact provider match
	RunID    string    // attempts of a single dispatch
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
}

// AttemptEventData captures one provider attempt inside a dispatch. The
// generated text and the prompt are deliberately not recorded.
type AttemptEventData struct {
	RunID        string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	StatusCode   int
	ErrorMessage string
}

// AttemptEvent is a stored attempt.
type AttemptEvent struct {
	ID           int64
	Timestamp    time.Time
	RunID        string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	StatusCode   int
	ErrorMessage string
}

// UsageStat aggregates attempts grouped by provider or model.
type UsageStat struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to attempt events.
type EventRepo interface {
	// AppendAttempt records a provider attempt.
	AppendAttempt(ctx context.Context, data AttemptEventData) error

	// QueryAttempts returns attempts newest first.
	QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error)

	// GetAttempt returns one attempt, or nil if it does not exist.
	GetAttempt(ctx context.Context, id int64) (*AttemptEvent, error)

	// UsageByProvider aggregates attempts per provider name.
	UsageByProvider(ctx context.Context) ([]UsageStat, error)

	// UsageByModel aggregates successful attempts per model ID.
	UsageByModel(ctx context.Context) ([]UsageStat, error)
}
