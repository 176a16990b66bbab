package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{
	"id", "timestamp", "run_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"status_code", "error_message",
}

// eventRepo implements EventRepo on top of the ent SQL driver.
type eventRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

func (r *eventRepo) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(attemptEventsTable).
		Columns(attemptColumns[1:]...).
		Values(
			r.clock().UnixMilli(),
			data.RunID,
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.StatusCode,
			data.ErrorMessage,
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptEventsTable)).
		OrderBy(entsql.Desc("id"))

	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Provider != "" {
		sel.Where(entsql.EQ("provider", opts.Provider))
	}
	if opts.RunID != "" {
		sel.Where(entsql.EQ("run_id", opts.RunID))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	events, err := r.scanAttempts(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetAttempt(ctx context.Context, id int64) (*AttemptEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptEventsTable)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	events, err := r.scanAttempts(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("get attempt event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) UsageByProvider(ctx context.Context) ([]UsageStat, error) {
	stats, err := r.usage(ctx, "provider", false)
	if err != nil {
		return nil, fmt.Errorf("query provider usage: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) UsageByModel(ctx context.Context) ([]UsageStat, error) {
	stats, err := r.usage(ctx, "model", true)
	if err != nil {
		return nil, fmt.Errorf("query model usage: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) usage(ctx context.Context, key string, successOnly bool) ([]UsageStat, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			key,
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As(entsql.Sum("success"), "successes"),
			entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
			entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
			entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
		).
		From(entsql.Table(attemptEventsTable)).
		GroupBy(key).
		OrderBy(key)

	if successOnly {
		sel.Where(entsql.And(
			entsql.EQ("success", true),
			entsql.NEQ(key, ""),
		))
	}

	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []UsageStat
	for rows.Next() {
		var (
			st         UsageStat
			successes  int
			avgLatency sql.NullFloat64
		)
		if err := rows.Scan(&st.Key, &st.Calls, &successes, &st.InputTokens, &st.OutputTokens, &avgLatency); err != nil {
			return nil, err
		}
		st.Failures = st.Calls - successes
		if avgLatency.Valid {
			st.AvgLatencyMs = int64(avgLatency.Float64)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (r *eventRepo) scanAttempts(ctx context.Context, query string, args []any) ([]AttemptEvent, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []AttemptEvent
	for rows.Next() {
		var (
			e  AttemptEvent
			ts int64
		)
		err := rows.Scan(
			&e.ID, &ts, &e.RunID, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.StatusCode, &e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
