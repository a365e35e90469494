package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turanweb/turan/internal/events"
	"github.com/turanweb/turan/internal/wizard"
)

var at = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestInsertStepEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO funnel_events").
		WithArgs(pgxmock.AnyArg(), "sid", "player", "step_entered", 2, "demo", (*string)(nil), (*string)(nil), (*int64)(nil), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewStore(mock).Insert(context.Background(), wizard.Event{
		SessionID: "sid",
		Flow:      wizard.VariantPlayer,
		Kind:      wizard.EventStepEntered,
		Step:      2,
		StepKind:  "demo",
		At:        at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSubmittedEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO funnel_events").
		WithArgs(pgxmock.AnyArg(), "sid", "classic", "submitted", 8, "brief",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), at).
		WillReturnError(errors.New("connection reset"))

	err = NewStore(mock).Insert(context.Background(), wizard.Event{
		SessionID: "sid",
		Flow:      wizard.VariantClassic,
		Kind:      wizard.EventSubmitted,
		Step:      8,
		StepKind:  "brief",
		Outcome:   "failed",
		Reason:    "leads: unexpected status 500",
		Latency:   250 * time.Millisecond,
		At:        at,
	})
	assert.ErrorContains(t, err, "funnel: insert failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT session_id\\), COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"count", "last"}).AddRow(int64(12), at))
	mock.ExpectQuery("WHERE kind = 'step_entered'").
		WillReturnRows(pgxmock.NewRows([]string{"flow", "step", "step_kind", "count"}).
			AddRow("player", 1, "name", int64(12)).
			AddRow("player", 2, "demo", int64(7)))
	mock.ExpectQuery("WHERE kind = 'submitted'").
		WillReturnRows(pgxmock.NewRows([]string{"flow", "outcome", "count"}).
			AddRow("player", "ok", int64(2)))

	sum, err := NewStore(mock).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), sum.Sessions)
	assert.Equal(t, at, sum.LastEventAt)
	assert.Equal(t, []StepCount{
		{Flow: "player", Step: 1, StepKind: "name", Sessions: 12},
		{Flow: "player", Step: 2, StepKind: "demo", Sessions: 7},
	}, sum.Steps)
	assert.Equal(t, []OutcomeCount{{Flow: "player", Outcome: "ok", Count: 2}}, sum.Outcomes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))
	_, err = NewStore(mock).Summary(context.Background())
	assert.ErrorContains(t, err, "funnel: totals")
}

type memInserter struct {
	mu     sync.Mutex
	events []wizard.Event
	got    chan struct{}
}

func (m *memInserter) Insert(_ context.Context, e wizard.Event) error {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
	select {
	case m.got <- struct{}{}:
	default:
	}
	return nil
}

func TestConsume(t *testing.T) {
	ns, err := server.NewServer(&server.Options{Port: -1})
	require.NoError(t, err)
	ns.Start()
	defer ns.Shutdown()
	require.True(t, ns.ReadyForConnections(5*time.Second))

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	store := &memInserter{got: make(chan struct{}, 4)}
	done := make(chan error)
	go func() {
		done <- Consume(ctx, nc, store, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	}()

	ev := wizard.Event{SessionID: "sid", Flow: wizard.VariantPlayer, Kind: wizard.EventStopped, Step: 2, StepKind: "demo", At: at}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	// The subscription may not be registered yet; publish until one lands.
	require.Eventually(t, func() bool {
		require.NoError(t, nc.Publish(events.FunnelSubject, []byte("not json")))
		require.NoError(t, nc.Publish(events.FunnelSubject, data))
		require.NoError(t, nc.Flush())
		select {
		case <-store.got:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.events)
	assert.Equal(t, ev, store.events[0])
}
