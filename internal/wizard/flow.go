package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/turanweb/turan/internal/brief"
)

type StepKind int

const (
	StepName StepKind = iota + 1
	StepVoid
	StepReveal
	StepLiveEdits
	StepStylePicker
	StepShowcase
	StepDemo
	StepCallToAction
	StepBrief
)

func (k StepKind) String() string {
	switch k {
	case StepName:
		return "name"
	case StepVoid:
		return "void"
	case StepReveal:
		return "reveal"
	case StepLiveEdits:
		return "live_edits"
	case StepStylePicker:
		return "style_picker"
	case StepShowcase:
		return "showcase"
	case StepDemo:
		return "demo"
	case StepCallToAction:
		return "call_to_action"
	case StepBrief:
		return "brief"
	}
	return fmt.Sprintf("step(%d)", int(k))
}

// Variant names a flow configuration.
type Variant string

const (
	VariantPlayer  Variant = "player"
	VariantClassic Variant = "classic"
)

// Timings holds every delay a flow schedules.
type Timings struct {
	// Demo step
	DemoReveal    time.Duration
	DemoTransform time.Duration
	ChatTick      time.Duration
	ChatReply     time.Duration
	ChatSettle    time.Duration
	Highlight     time.Duration
	StyleHold     time.Duration

	ThemeCycle     time.Duration
	FullscreenExit time.Duration

	// Classic steps
	VoidReady      time.Duration
	RevealPopup    time.Duration
	RevealUnblur   time.Duration
	LiveEditTick   time.Duration
	LiveEditSettle time.Duration
}

type Mutation string

const (
	MutationLighten Mutation = "lighten"
	MutationEnlarge Mutation = "enlarge"
	MutationLogo    Mutation = "logo"
)

// ChatPair is one scripted exchange of the demo chat and the edit it performs
// on the preview.
type ChatPair struct {
	User     string
	Bot      string
	Mutation Mutation
}

type ChatMessage struct {
	ID       int
	Text     string
	FromUser bool
}

// Flow is one configuration of the wizard: its step order, theme catalog,
// scripts and timings.
type Flow struct {
	Variant  Variant
	Steps    []StepKind
	Themes   []brief.Theme
	AutoPlay bool
	Timings  Timings
	Chat     []ChatPair
	LiveEdit []ChatMessage
	// PopupText is shown in the reveal popup.
	PopupText string
}

// MaxStep is the index of the last step.
func (f *Flow) MaxStep() int {
	return len(f.Steps)
}

// Kind returns the kind of the 1-based step.
func (f *Flow) Kind(step int) StepKind {
	if step < 1 || step > len(f.Steps) {
		return 0
	}
	return f.Steps[step-1]
}

// Player is the compact flow: a scripted demo with playback controls.
func Player() *Flow {
	return &Flow{
		Variant:  VariantPlayer,
		Steps:    []StepKind{StepName, StepDemo, StepCallToAction, StepBrief},
		AutoPlay: true,
		Themes: []brief.Theme{
			{ID: "ios26", Name: "iOS 26", Label: "iOS 26 GLASS", Primary: "#007AFF", Secondary: "#5856D6", Dark: true},
			{ID: "cyber", Name: "Cyber Horizon", Label: "CYBER NEON", Primary: "#0D0221", Secondary: "#00F5FF", Dark: true},
			{ID: "sunset", Name: "Sunset Silk", Label: "SUNSET SILK", Primary: "#FF4E50", Secondary: "#F9D423"},
			{ID: "forest", Name: "Emerald Deep", Label: "DEEP FOREST", Primary: "#064E3B", Secondary: "#065F46", Dark: true},
			{ID: "chrome", Name: "Cosmic Chrome", Label: "COSMIC CHROME", Primary: "#334155", Secondary: "#94A3B8"},
		},
		Chat: []ChatPair{
			{User: "Түсін сәл ашық қылайықшы", Bot: "Әрине! Қазір жаңартамын.", Mutation: MutationLighten},
			{User: "Жазуды сәл үлкейте аласыз ба?", Bot: "Дайын! Мәтін өлшемі өзгертілді.", Mutation: MutationEnlarge},
			{User: "Мына жерге логотип қойыңызшы", Bot: "Логотип сәтті қосылды!", Mutation: MutationLogo},
		},
		PopupText: "Ұнаса, тапсырыс беріп, сайттың толық нұсқасын алыңыз.",
		Timings: Timings{
			DemoReveal:     3 * time.Second,
			DemoTransform:  time.Second,
			ChatTick:       2 * time.Second,
			ChatReply:      800 * time.Millisecond,
			ChatSettle:     time.Second,
			Highlight:      500 * time.Millisecond,
			StyleHold:      10 * time.Second,
			ThemeCycle:     2 * time.Second,
			FullscreenExit: 1200 * time.Millisecond,
		},
	}
}

// Classic is the long flow that walks through every stage one screen at a time.
func Classic() *Flow {
	return &Flow{
		Variant: VariantClassic,
		Steps: []StepKind{
			StepName, StepVoid, StepReveal, StepLiveEdits,
			StepStylePicker, StepShowcase, StepCallToAction, StepBrief,
		},
		Themes: []brief.Theme{
			{ID: "modern", Name: "Modern", Label: "Заманауи", Primary: "#3B82F6", Secondary: "#60A5FA"},
			{ID: "elegant", Name: "Elegant", Label: "Талғампаз", Primary: "#8B5CF6", Secondary: "#A78BFA"},
			{ID: "nature", Name: "Nature", Label: "Табиғи", Primary: "#10B981", Secondary: "#34D399"},
			{ID: "bold", Name: "Bold", Label: "Батыл", Primary: "#EF4444", Secondary: "#F87171"},
			{ID: "minimal", Name: "Minimal", Label: "Қарапайым", Primary: "#1F2937", Secondary: "#4B5563"},
		},
		LiveEdit: []ChatMessage{
			{ID: 1, Text: "Түсін көкке өзгертіңізші", FromUser: true},
			{ID: 2, Text: "Дайын! Түсі өзгертілді"},
			{ID: 3, Text: "Батырманы үлкейтіңіз", FromUser: true},
			{ID: 4, Text: "Батырма үлкейтілді"},
			{ID: 5, Text: "Керемет! Рахмет!", FromUser: true},
		},
		PopupText: "Міне осындай нәтижені көргеннен кейін, ұнап жатса, ақшасын төлеп, тапсырыс беріп, сайттың толық версиясын алуға болады.",
		Timings: Timings{
			ThemeCycle:     2500 * time.Millisecond,
			FullscreenExit: 1200 * time.Millisecond,
			VoidReady:      4 * time.Second,
			RevealPopup:    time.Second,
			RevealUnblur:   time.Second,
			LiveEditTick:   2 * time.Second,
			LiveEditSettle: 2 * time.Second,
		},
	}
}

var ErrUnknownVariant = errors.New("wizard: unknown flow variant")

// FlowFor returns a fresh flow for the named variant.
func FlowFor(v Variant) (*Flow, error) {
	switch v {
	case VariantPlayer:
		return Player(), nil
	case VariantClassic:
		return Classic(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
}
