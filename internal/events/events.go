// Package events carries wizard activity over NATS: render ticks for the
// visitor's open stream and funnel milestones for analytics.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/turanweb/turan/internal/metrics"
	"github.com/turanweb/turan/internal/wizard"
)

// FunnelSubject receives every wizard.Event as JSON.
const FunnelSubject = "funnel.events"

// SessionSubject is published to whenever the session's state changes.
func SessionSubject(sid string) string {
	return "wizard." + sid + ".changed"
}

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Bus struct {
	pub     Publisher
	metrics *metrics.Wizard
	logger  *slog.Logger
}

func NewBus(pub Publisher, m *metrics.Wizard, logger *slog.Logger) *Bus {
	return &Bus{pub: pub, metrics: m, logger: logger}
}

// Hooks wires a wizard session to the bus.
func (b *Bus) Hooks() wizard.Hooks {
	return wizard.Hooks{
		Changed: b.Changed,
		Event:   b.Event,
	}
}

func (b *Bus) Changed(sid string) {
	if err := b.pub.Publish(SessionSubject(sid), nil); err != nil {
		b.logger.LogAttrs(
			context.Background(),
			slog.LevelError,
			"failed to publish session change",
			slog.String("sid", sid),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bus) Event(e wizard.Event) {
	flow := string(e.Flow)
	switch e.Kind {
	case wizard.EventStepEntered:
		b.metrics.StepEntered(flow, e.StepKind)
	case wizard.EventStopped:
		b.metrics.Stopped(flow)
	case wizard.EventSubmitted:
		b.metrics.Submitted(flow, e.Outcome, e.Latency.Seconds())
	}

	data, err := json.Marshal(e)
	if err != nil {
		b.logger.LogAttrs(
			context.Background(),
			slog.LevelError,
			"failed to marshal funnel event",
			slog.String("error", err.Error()),
		)
		return
	}
	if err := b.pub.Publish(FunnelSubject, data); err != nil {
		b.logger.LogAttrs(
			context.Background(),
			slog.LevelError,
			"failed to publish funnel event",
			slog.String("error", err.Error()),
		)
	}
}
