package wizard

import (
	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/leads"
)

// SubStep is the position inside the demo step.
type SubStep string

const (
	SubReveal    SubStep = "reveal"
	SubPopup     SubStep = "popup"
	SubTransform SubStep = "transform"
	SubChat      SubStep = "chat"
	SubStyle     SubStep = "style"
)

// RevealPhase is the position inside the classic reveal step.
type RevealPhase string

const (
	RevealBlurred RevealPhase = "reveal"
	RevealPopup   RevealPhase = "popup"
	RevealUnblur  RevealPhase = "unblur"
)

// Highlight marks the preview element the last chat edit touched.
type Highlight string

const (
	HighlightNone       Highlight = ""
	HighlightBackground Highlight = "bg"
	HighlightHeading    Highlight = "h1"
	HighlightLogo       Highlight = "logo"
)

// BriefSections are the pages of the brief form.
var BriefSections = []string{"Бизнес", "Мақсат", "Қосымша", "Байланыс"}

// Cosmetics are the transient preview flags the demo toggles. None of them
// reach the submitted brief.
type Cosmetics struct {
	ThemeIndex int
	Highlight  Highlight
	Lighter    bool
	FontScale  float64
	ShowLogo   bool
	Fullscreen bool
}

func (c *Cosmetics) apply(m Mutation) {
	switch m {
	case MutationLighten:
		c.Lighter = true
		c.Highlight = HighlightBackground
	case MutationEnlarge:
		c.FontScale = 1.2
		c.Highlight = HighlightHeading
	case MutationLogo:
		c.ShowLogo = true
		c.Highlight = HighlightLogo
	}
}

func (c *Cosmetics) revert() {
	c.Lighter = false
	c.FontScale = 1
	c.ShowLogo = false
	c.Highlight = HighlightNone
}

// State is a point-in-time copy of a session, safe to read without locking.
type State struct {
	ID        string
	Variant   Variant
	Step      int
	MaxStep   int
	Kind      StepKind
	Brief     brief.LeadBrief
	Themes    []brief.Theme
	PopupText string

	Playing bool
	Sub     SubStep
	Cosmetics
	AutoCycle bool
	Chat      []ChatMessage

	VoidReady bool
	Reveal    RevealPhase

	Section  int
	Sections int

	Submitting bool
	Complete   bool
	Outcome    leads.Outcome
}

// CanForward reports whether the playback forward control does anything.
func (s State) CanForward() bool {
	return s.Kind == StepDemo && (s.Sub == SubReveal || s.Sub == SubPopup)
}

// CanBackward reports whether the playback backward control does anything.
func (s State) CanBackward() bool {
	return s.Kind == StepDemo && (s.Sub == SubPopup || s.Sub == SubChat || s.Sub == SubStyle)
}

func (s State) CanAdvance() bool {
	return advanceCheck(s.Kind, s.Brief.Name, s.VoidReady, s.Step >= s.MaxStep, s.Complete) == nil
}

func (s State) CanSubmit() bool {
	return s.Kind == StepBrief && !s.Submitting && !s.Complete && brief.CanSubmit(s.Brief)
}

// Theme is the theme currently previewed.
func (s State) Theme() brief.Theme {
	if len(s.Themes) == 0 {
		return brief.Theme{}
	}
	return s.Themes[s.ThemeIndex%len(s.Themes)]
}

func advanceCheck(kind StepKind, name string, voidReady, atEnd, complete bool) error {
	if complete {
		return ErrComplete
	}
	if atEnd {
		return ErrNotApplicable
	}
	switch kind {
	case StepName:
		if !brief.NameReady(name) {
			return ErrNotReady
		}
	case StepVoid:
		if !voidReady {
			return ErrNotReady
		}
	case StepShowcase, StepCallToAction:
	default:
		return ErrNotApplicable
	}
	return nil
}
