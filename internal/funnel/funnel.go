// Package funnel stores wizard milestones in Postgres and summarizes how far
// visitors get.
package funnel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nats-io/nats.go"
	"github.com/turanweb/turan/internal/events"
	"github.com/turanweb/turan/internal/wizard"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

const insertEvent = `
INSERT INTO funnel_events (id, session_id, flow, kind, step, step_kind, outcome, reason, latency_ms, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *Store) Insert(ctx context.Context, e wizard.Event) error {
	var outcome, reason *string
	var latency *int64
	if e.Kind == wizard.EventSubmitted {
		outcome = &e.Outcome
		reason = &e.Reason
		ms := e.Latency.Milliseconds()
		latency = &ms
	}

	_, err := s.db.Exec(ctx, insertEvent,
		uuid.New(),
		e.SessionID,
		string(e.Flow),
		string(e.Kind),
		e.Step,
		e.StepKind,
		outcome,
		reason,
		latency,
		e.At,
	)
	if err != nil {
		return fmt.Errorf("funnel: insert failed: %w", err)
	}
	return nil
}

type StepCount struct {
	Flow     string
	Step     int
	StepKind string
	Sessions int64
}

type OutcomeCount struct {
	Flow    string
	Outcome string
	Count   int64
}

type Summary struct {
	Sessions    int64
	LastEventAt time.Time
	Steps       []StepCount
	Outcomes    []OutcomeCount
}

const (
	totalsQuery = `
SELECT COUNT(DISTINCT session_id), COALESCE(MAX(occurred_at), to_timestamp(0))
FROM funnel_events`

	stepsQuery = `
SELECT flow, step, step_kind, COUNT(DISTINCT session_id)
FROM funnel_events
WHERE kind = 'step_entered'
GROUP BY flow, step, step_kind
ORDER BY flow, step`

	outcomesQuery = `
SELECT flow, outcome, COUNT(*)
FROM funnel_events
WHERE kind = 'submitted'
GROUP BY flow, outcome
ORDER BY flow, outcome`
)

// Summary reports distinct sessions reaching each step and how submissions
// ended.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := s.db.QueryRow(ctx, totalsQuery).Scan(&sum.Sessions, &sum.LastEventAt); err != nil {
		return Summary{}, fmt.Errorf("funnel: totals: %w", err)
	}

	rows, err := s.db.Query(ctx, stepsQuery)
	if err != nil {
		return Summary{}, fmt.Errorf("funnel: steps: %w", err)
	}
	for rows.Next() {
		var c StepCount
		if err := rows.Scan(&c.Flow, &c.Step, &c.StepKind, &c.Sessions); err != nil {
			rows.Close()
			return Summary{}, fmt.Errorf("funnel: scan step: %w", err)
		}
		sum.Steps = append(sum.Steps, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("funnel: steps: %w", err)
	}

	rows, err = s.db.Query(ctx, outcomesQuery)
	if err != nil {
		return Summary{}, fmt.Errorf("funnel: outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Flow, &c.Outcome, &c.Count); err != nil {
			return Summary{}, fmt.Errorf("funnel: scan outcome: %w", err)
		}
		sum.Outcomes = append(sum.Outcomes, c)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("funnel: outcomes: %w", err)
	}
	return sum, nil
}

// Inserter records a single event.
type Inserter interface {
	Insert(ctx context.Context, e wizard.Event) error
}

// Consume stores funnel events published on NATS until ctx is done. Replicas
// share a queue group so each event is written once.
func Consume(ctx context.Context, nc *nats.Conn, store Inserter, logger *slog.Logger) error {
	msgs := make(chan *nats.Msg, 64)
	sub, err := nc.ChanQueueSubscribe(events.FunnelSubject, "funnel", msgs)
	if err != nil {
		return fmt.Errorf("funnel: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case msg := <-msgs:
			var e wizard.Event
			if err := json.Unmarshal(msg.Data, &e); err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "dropping malformed funnel event",
					slog.String("error", err.Error()))
				continue
			}
			if err := store.Insert(ctx, e); err != nil {
				logger.LogAttrs(ctx, slog.LevelError, "failed to record funnel event",
					slog.String("sid", e.SessionID),
					slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return nil
		}
	}
}
