// Package wizard runs the onboarding flow of one visitor: which step they are
// on, the demo's scripted sub-steps, the timers that move them along and the
// final submission of their brief.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/clock"
	"github.com/turanweb/turan/internal/leads"
)

var (
	ErrClosed        = errors.New("wizard: session closed")
	ErrComplete      = errors.New("wizard: brief already submitted")
	ErrNotReady      = errors.New("wizard: step not ready to advance")
	ErrNotApplicable = errors.New("wizard: action not available on this step")
	ErrCannotSubmit  = errors.New("wizard: brief is incomplete")
	ErrSubmitting    = errors.New("wizard: submission in flight")
)

// Submitter delivers a finished brief. Implementations report failures
// through the Outcome rather than an error.
type Submitter interface {
	Submit(ctx context.Context, b brief.LeadBrief) leads.Outcome
}

type Options struct {
	Clock     clock.Clock
	Submitter Submitter
	Hooks     Hooks
	Logger    *slog.Logger
}

type chatStage int

const (
	chatWaiting chatStage = iota
	chatAsked
	chatAnswered
)

// Session is the state container of one visitor. Every transition, user
// driven or timer driven, runs under the session lock.
type Session struct {
	id        string
	flow      *Flow
	clock     clock.Clock
	submitter Submitter
	hooks     Hooks
	logger    *slog.Logger

	mu        sync.Mutex
	form      *brief.Store
	steps     Sequencer
	sections  Sequencer
	st        State
	chatPair  int
	chatStage chatStage
	msgSeq    int
	sched     *scheduler
	events    []Event
	closed    bool

	lastSeen atomic.Int64
}

func NewSession(id string, flow *Flow, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Submitter == nil {
		opts.Submitter = noSubmitter{}
	}

	s := &Session{
		id:        id,
		flow:      flow,
		clock:     opts.Clock,
		submitter: opts.Submitter,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		form:      brief.NewStore(flow.Themes),
		steps:     NewSequencer(flow.MaxStep()),
		sections:  NewSequencer(len(BriefSections)),
		st: State{
			ID:        id,
			Variant:   flow.Variant,
			Themes:    flow.Themes,
			PopupText: flow.PopupText,
			Playing:   flow.AutoPlay,
			Sub:       SubReveal,
			AutoCycle: true,
			Cosmetics: Cosmetics{FontScale: 1},
		},
	}
	s.sched = newScheduler(opts.Clock, s.fire)
	s.Touch(opts.Clock.Now())

	s.mu.Lock()
	s.enterStep()
	events := s.flush()
	s.mu.Unlock()
	s.publish(events)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Flow() *Flow { return s.flow }

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st
	st.Chat = slices.Clone(s.st.Chat)
	st.Brief = s.form.Brief()
	st.Step = s.steps.Current()
	st.MaxStep = s.steps.Max()
	st.Kind = s.kind()
	st.Section = s.sections.Current()
	st.Sections = s.sections.Max()
	return st
}

func (s *Session) Touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Close cancels every pending timer. Later operations fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sched.cancelAll()
}

func (s *Session) SetField(f brief.Field, v string) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		return s.form.Set(f, v)
	})
}

func (s *Session) SetFlag(f brief.Field, v bool) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		return s.form.SetFlag(f, v)
	})
}

func (s *Session) ToggleFlag(f brief.Field) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		return s.form.ToggleFlag(f)
	})
}

func (s *Session) ToggleFeature(feature string) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		return s.form.ToggleFeature(feature)
	})
}

// Choose picks a catalog entry by position for a choice field.
func (s *Session) Choose(f brief.Field, index int) error {
	if f == brief.FieldSelectedTheme {
		return s.SelectTheme(index)
	}
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		return s.form.Choose(f, index)
	})
}

// Advance is the visitor's explicit "next" on steps that have one.
func (s *Session) Advance() error {
	return s.do(func() error {
		err := advanceCheck(s.kind(), s.form.Brief().Name, s.st.VoidReady, s.steps.AtEnd(), s.st.Complete)
		if err != nil {
			return err
		}
		s.advanceStep()
		return nil
	})
}

// Back leaves the brief form for the previous step.
func (s *Session) Back() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.kind() != StepBrief || s.st.Submitting {
			return ErrNotApplicable
		}
		if s.steps.Retreat() {
			s.enterStep()
		}
		return nil
	})
}

// Agree accepts the offer shown in the reveal popup.
func (s *Session) Agree() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		switch {
		case s.kind() == StepDemo && s.st.Sub == SubPopup:
			s.enterSub(SubTransform)
		case s.kind() == StepReveal && s.st.Reveal == RevealPopup:
			s.st.Reveal = RevealUnblur
			s.sched.schedule(SlotAdvance, s.flow.Timings.RevealUnblur, s.advanceStep)
		default:
			return ErrNotApplicable
		}
		return nil
	})
}

// Continue leaves the style stage: the preview goes fullscreen and the next
// step follows shortly after.
func (s *Session) Continue() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if !s.styling() || s.st.Fullscreen {
			return ErrNotApplicable
		}
		s.goFullscreen()
		return nil
	})
}

// SelectTheme picks the index-th theme of the flow and stops auto cycling.
func (s *Session) SelectTheme(index int) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if !s.styling() || s.st.Fullscreen {
			return ErrNotApplicable
		}
		if index < 0 || index >= len(s.flow.Themes) {
			return fmt.Errorf("%w: theme %d", brief.ErrNotInCatalog, index)
		}
		if err := s.form.SelectTheme(s.flow.Themes[index].ID); err != nil {
			return err
		}
		s.st.ThemeIndex = index
		s.st.AutoCycle = false
		s.sched.cancel(SlotTheme)
		return nil
	})
}

func (s *Session) NextSection() error {
	return s.section(func() { s.sections.Advance() })
}

func (s *Session) PrevSection() error {
	return s.section(func() { s.sections.Retreat() })
}

// GoSection jumps to the 1-based section n.
func (s *Session) GoSection(n int) error {
	return s.section(func() { s.sections.Go(n) })
}

func (s *Session) section(move func()) error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.kind() != StepBrief {
			return ErrNotApplicable
		}
		move()
		return nil
	})
}

// Submit sends the brief once. The outbound call runs without the session
// lock and is not cancelled when ctx is. Whatever the outcome, the session
// ends up complete.
func (s *Session) Submit(ctx context.Context) (leads.Outcome, error) {
	var b brief.LeadBrief
	err := s.do(func() error {
		switch {
		case s.closed:
			return ErrClosed
		case s.st.Complete:
			return ErrComplete
		case s.st.Submitting:
			return ErrSubmitting
		case s.kind() != StepBrief:
			return ErrNotApplicable
		}
		b = s.form.Brief()
		if !brief.CanSubmit(b) {
			return ErrCannotSubmit
		}
		s.st.Submitting = true
		return nil
	})
	if err != nil {
		return leads.Outcome{}, err
	}

	start := s.clock.Now()
	out := s.submitter.Submit(context.WithoutCancel(ctx), b)
	latency := s.clock.Now().Sub(start)
	s.logger.LogAttrs(
		ctx,
		slog.LevelInfo,
		"brief submitted",
		slog.String("session", s.id),
		slog.String("outcome", string(out.Status)),
	)

	s.mu.Lock()
	s.st.Submitting = false
	s.st.Complete = true
	s.st.Outcome = out
	s.sched.cancelAll()
	ev := s.event(EventSubmitted)
	ev.Outcome = string(out.Status)
	ev.Reason = out.Reason
	ev.Latency = latency
	s.events = append(s.events, ev)
	events := s.flush()
	s.mu.Unlock()
	s.publish(events)

	return out, nil
}

// do runs a transition under the lock and publishes it afterwards.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	events := s.flush()
	s.mu.Unlock()

	if err == nil {
		s.publish(events)
	}
	return err
}

// fire is the scheduler's entry point for timer callbacks.
func (s *Session) fire(fn func() bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ran := fn()
	events := s.flush()
	s.mu.Unlock()

	if ran {
		s.publish(events)
	}
}

func (s *Session) flush() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *Session) publish(events []Event) {
	if s.hooks.Event != nil {
		for _, ev := range events {
			s.hooks.Event(ev)
		}
	}
	if s.hooks.Changed != nil {
		s.hooks.Changed(s.id)
	}
}

func (s *Session) event(kind EventKind) Event {
	return Event{
		SessionID: s.id,
		Flow:      s.flow.Variant,
		Kind:      kind,
		Step:      s.steps.Current(),
		StepKind:  s.kind().String(),
		At:        s.clock.Now(),
	}
}

func (s *Session) record(kind EventKind) {
	s.events = append(s.events, s.event(kind))
}

func (s *Session) open() error {
	if s.st.Complete {
		return ErrComplete
	}
	return nil
}

func (s *Session) kind() StepKind {
	return s.flow.Kind(s.steps.Current())
}

func (s *Session) styling() bool {
	return s.kind() == StepStylePicker || (s.kind() == StepDemo && s.st.Sub == SubStyle)
}

func (s *Session) advanceStep() {
	if s.steps.Advance() {
		s.enterStep()
	}
}

// enterStep cancels whatever the previous step left pending and arms the
// timers of the current one.
func (s *Session) enterStep() {
	s.sched.cancelAll()
	s.record(EventStepEntered)

	t := s.flow.Timings
	switch s.kind() {
	case StepVoid:
		s.st.VoidReady = false
		s.sched.schedule(SlotReady, t.VoidReady, func() { s.st.VoidReady = true })
	case StepReveal:
		s.st.Reveal = RevealBlurred
		s.sched.schedule(SlotPhase, t.RevealPopup, func() { s.st.Reveal = RevealPopup })
	case StepLiveEdits:
		s.st.Chat = nil
		s.scheduleLiveEdit()
	case StepStylePicker:
		s.st.Fullscreen = false
		s.st.AutoCycle = true
		s.scheduleThemeCycle()
	case StepDemo:
		s.resetChat()
		s.st.Fullscreen = false
		s.st.AutoCycle = true
		s.enterSub(SubReveal)
	case StepBrief:
		s.sections.Reset()
	default:
		s.st.Fullscreen = false
	}
}

func (s *Session) goFullscreen() {
	s.st.Fullscreen = true
	s.sched.cancel(SlotPhase, SlotTheme)
	s.sched.schedule(SlotAdvance, s.flow.Timings.FullscreenExit, s.advanceStep)
}

func (s *Session) scheduleThemeCycle() {
	n := len(s.flow.Themes)
	if n == 0 || !s.st.AutoCycle || s.st.Fullscreen {
		return
	}
	if s.kind() == StepDemo && !s.st.Playing {
		return
	}
	s.sched.schedule(SlotTheme, s.flow.Timings.ThemeCycle, func() {
		s.st.ThemeIndex = (s.st.ThemeIndex + 1) % n
		s.scheduleThemeCycle()
	})
}

func (s *Session) hasPending(slot Slot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.isPending(slot)
}

func (s *Session) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.size()
}

type noSubmitter struct{}

func (noSubmitter) Submit(context.Context, brief.LeadBrief) leads.Outcome {
	return leads.Failed("wizard: no submitter configured", 0)
}
