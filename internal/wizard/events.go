package wizard

import "time"

type EventKind string

const (
	EventStepEntered EventKind = "step_entered"
	EventStopped     EventKind = "stopped"
	EventSubmitted   EventKind = "submitted"
)

// Event is a funnel milestone of one session.
type Event struct {
	SessionID string        `json:"sessionId"`
	Flow      Variant       `json:"flow"`
	Kind      EventKind     `json:"kind"`
	Step      int           `json:"step"`
	StepKind  string        `json:"stepKind"`
	Outcome   string        `json:"outcome,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Latency   time.Duration `json:"latency,omitempty"`
	At        time.Time     `json:"at"`
}

// Hooks are called after a transition commits, outside the session lock.
// Either may be nil.
type Hooks struct {
	// Changed fires once per committed transition.
	Changed func(id string)
	Event   func(Event)
}
