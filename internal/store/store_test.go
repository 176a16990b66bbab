package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", attemptEventsTable,
	).Scan(&name)
	if err != nil {
		t.Fatalf("attempt_events table not found: %v", err)
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendAttempt(ctx, AttemptEventData{RunID: "r1", Provider: "gemini", Purpose: "interview-test", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryAttempts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func seedAttempts(t *testing.T, repo EventRepo) {
	t.Helper()
	ctx := context.Background()
	attempts := []AttemptEventData{
		{RunID: "run-1", Provider: "huggingface", Purpose: "interview-test", LatencyMs: 100, StatusCode: 503, ErrorMessage: "huggingface API error: 503 - loading"},
		{RunID: "run-1", Provider: "gemini", Model: "gemini-1.5-flash", Purpose: "interview-test", InputTokens: 300, OutputTokens: 900, LatencyMs: 300, Success: true},
		{RunID: "run-2", Provider: "huggingface", Model: "HuggingFaceH4/zephyr-7b-beta", Purpose: "interview-test", LatencyMs: 200, Success: true},
		{RunID: "run-3", Provider: "gemini", Purpose: "smoke", LatencyMs: 50, StatusCode: 400, ErrorMessage: "gemini API error: 400 - bad key"},
	}
	for i, a := range attempts {
		if err := repo.AppendAttempt(ctx, a); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestQueryAttemptsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedAttempts(t, repo)

	events, err := repo.QueryAttempts(context.Background(), QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
	if events[0].RunID != "run-3" || events[3].RunID != "run-1" {
		t.Errorf("order = %s..%s, want run-3..run-1", events[0].RunID, events[3].RunID)
	}

	last := events[3]
	if last.Provider != "huggingface" || last.Success {
		t.Errorf("oldest event = %+v, want failed huggingface attempt", last)
	}
	if last.StatusCode != 503 {
		t.Errorf("status code = %d, want 503", last.StatusCode)
	}
	if last.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestQueryAttemptsFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedAttempts(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		opts QueryOpts
		want int
	}{
		{"limit", QueryOpts{Limit: 2}, 2},
		{"purpose", QueryOpts{Purpose: "smoke"}, 1},
		{"provider", QueryOpts{Provider: "gemini"}, 2},
		{"run", QueryOpts{RunID: "run-1"}, 2},
		{"run and provider", QueryOpts{RunID: "run-1", Provider: "gemini"}, 1},
		{"future window", QueryOpts{From: time.Now().Add(time.Hour)}, 0},
		{"past window", QueryOpts{To: time.Now().Add(-time.Hour)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.QueryAttempts(ctx, tt.opts)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("events = %d, want %d", len(events), tt.want)
			}
		})
	}
}

func TestGetAttempt(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedAttempts(t, repo)
	ctx := context.Background()

	events, err := repo.QueryAttempts(ctx, QueryOpts{RunID: "run-3"})
	if err != nil || len(events) != 1 {
		t.Fatalf("query run-3: %v (%d events)", err, len(events))
	}

	got, err := repo.GetAttempt(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event")
	}
	if got.ErrorMessage != "gemini API error: 400 - bad key" {
		t.Errorf("error message = %q", got.ErrorMessage)
	}

	missing, err := repo.GetAttempt(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestUsageByProvider(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedAttempts(t, repo)

	stats, err := repo.UsageByProvider(context.Background())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %d, want 2", len(stats))
	}

	// Ordered by key.
	gem, hf := stats[0], stats[1]
	if gem.Key != "gemini" || hf.Key != "huggingface" {
		t.Fatalf("keys = %s, %s", gem.Key, hf.Key)
	}
	if gem.Calls != 2 || gem.Failures != 1 {
		t.Errorf("gemini calls/failures = %d/%d, want 2/1", gem.Calls, gem.Failures)
	}
	if gem.InputTokens != 300 || gem.OutputTokens != 900 {
		t.Errorf("gemini tokens = %d/%d", gem.InputTokens, gem.OutputTokens)
	}
	if gem.AvgLatencyMs != 175 {
		t.Errorf("gemini avg latency = %d, want 175", gem.AvgLatencyMs)
	}
	if hf.Calls != 2 || hf.Failures != 1 {
		t.Errorf("huggingface calls/failures = %d/%d, want 2/1", hf.Calls, hf.Failures)
	}
}

func TestUsageByModelCountsSuccessesOnly(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	seedAttempts(t, repo)

	stats, err := repo.UsageByModel(context.Background())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %d, want 2: %+v", len(stats), stats)
	}
	for _, st := range stats {
		if st.Failures != 0 {
			t.Errorf("%s failures = %d, want 0", st.Key, st.Failures)
		}
		if st.Calls != 1 {
			t.Errorf("%s calls = %d, want 1", st.Key, st.Calls)
		}
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "events.db")
	t.Setenv("INTERTEST_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("INTERTEST_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	want := filepath.Join(dataHome, "intertest", "intertest.db")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}
