// Package components holds the small gomponents building blocks of the
// wizard views. Actions are posted to the server with datastar attributes;
// the server answers by merging a fresh #wizard fragment.
package components

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/helpers"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"
)

// Post binds a click to a datastar POST of path.
func Post(path string) Node {
	return Data("on-click", fmt.Sprintf("@post('%s')", path))
}

// SignalKey converts a camelCase signal name to the kebab-case form used in
// datastar attribute keys.
func SignalKey(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type ButtonCfg struct {
	Label   string
	Path    string
	Enabled bool
	Ghost   bool
	Icon    string
}

func ActionButton(c ButtonCfg) Node {
	class := "btn"
	if c.Ghost {
		class += " ghost"
	}
	return Button(Class(class), Type("button"),
		If(c.Enabled, Post(c.Path)),
		If(!c.Enabled, Disabled()),
		Text(c.Label),
		If(c.Icon != "", helpers.RenderSVG(c.Icon, "icon")),
	)
}

type InputCfg struct {
	Field       brief.Field
	Label       string
	Placeholder string
	Multiline   bool
	Problem     string
}

// TextField is bound to the signal named after the field and pushes its
// value to the server as the visitor types.
func TextField(c InputCfg) Node {
	id := "field-" + string(c.Field)
	attrs := []Node{
		ID(id),
		Name(string(c.Field)),
		Placeholder(c.Placeholder),
		Data("bind-"+SignalKey(string(c.Field)), ""),
		Data("on-input__debounce.300ms", fmt.Sprintf("@post('/wizard/fields/%s')", c.Field)),
	}

	var input Node
	if c.Multiline {
		input = Textarea(attrs...)
	} else {
		input = Input(append(attrs, Type("text"))...)
	}

	return Div(Class("field"),
		Label(For(id), Text(c.Label)),
		input,
		If(c.Problem != "", Span(Class("problem"), Text(c.Problem))),
	)
}

func Choice(label string, selected bool, path string) Node {
	return Button(Type("button"),
		Classes{"choice": true, "selected": selected},
		Post(path),
		Text(label),
	)
}

// Notice is merged on its own to report a rejected action.
func Notice(msg string) Node {
	return Div(ID("notice"), Class("notice"), Role("alert"), Text(msg))
}

// ClearNotice replaces a shown notice with its empty placeholder.
func ClearNotice() Node {
	return Div(ID("notice"))
}

func StepProgress(step, max int) Node {
	spans := make([]Node, 0, max)
	for i := 1; i <= max; i++ {
		spans = append(spans, Span(If(i <= step, Class("done"))))
	}
	return Div(Class("progress"), Aria("label", fmt.Sprintf("%d / %d", step, max)), Group(spans))
}

// PlayerControls renders the demo transport bar.
func PlayerControls(st wizard.State) Node {
	toggleIcon, toggleLabel := "play.svg", "Ойнату"
	if st.Playing {
		toggleIcon, toggleLabel = "pause.svg", "Кідірту"
	}
	control := func(icon, label, path string, enabled bool) Node {
		return Button(Type("button"),
			Aria("label", label),
			If(enabled, Post(path)),
			If(!enabled, Disabled()),
			helpers.RenderSVG(icon, "icon"),
		)
	}

	return Div(ID("player-controls"), Class("controls"),
		control("backward.svg", "Артқа", "/wizard/backward", st.CanBackward()),
		control(toggleIcon, toggleLabel, "/wizard/toggle", true),
		control("forward.svg", "Алға", "/wizard/forward", st.CanForward()),
		control("stop.svg", "Тоқтату", "/wizard/stop", !st.Submitting),
	)
}

type PreviewCfg struct {
	Blurred bool
	Overlay Node
}

// ThemePreview draws the sample landing in the current theme with the
// demo's cosmetic edits applied.
func ThemePreview(st wizard.State, c PreviewCfg) Node {
	theme := st.Theme()
	fg := "#0b1020"
	if theme.Dark {
		fg = "#f8fafc"
	}
	if st.Lighter {
		fg = "#0b1020"
	}
	scale := st.FontScale
	if scale == 0 {
		scale = 1
	}
	name := st.Brief.BusinessName
	if name == "" {
		name = st.Brief.Name
	}

	return Div(ID("preview"),
		Classes{
			"preview":    true,
			"fullscreen": st.Fullscreen,
			"blurred":    c.Blurred,
			"lighter":    st.Lighter,
			"hl":         st.Highlight == wizard.HighlightBackground,
		},
		Style(fmt.Sprintf("background:linear-gradient(135deg,%s,%s);color:%s", theme.Primary, theme.Secondary, fg)),
		If(st.ShowLogo, Div(Classes{"logo": true, "hl": st.Highlight == wizard.HighlightLogo},
			helpers.RenderSVG("logo.svg", "logo"),
		)),
		H1(
			Classes{"hl": st.Highlight == wizard.HighlightHeading},
			Style(fmt.Sprintf("font-size:%.2frem", 2.4*scale)),
			Text(name),
		),
		P(Text(theme.Label)),
		If(c.Overlay != nil, c.Overlay),
	)
}

func ChatLog(messages []wizard.ChatMessage) Node {
	return Div(ID("chat"), Class("chat"),
		Map(messages, func(m wizard.ChatMessage) Node {
			return Div(
				ID(fmt.Sprintf("msg-%d", m.ID)),
				Classes{"bubble": true, "user": m.FromUser},
				Text(m.Text),
			)
		}),
	)
}

// ThemePicker lists the flow's themes and highlights the one on preview, which
// follows auto cycling until the visitor picks one.
func ThemePicker(st wizard.State) Node {
	nodes := make([]Node, 0, len(st.Themes))
	for i, t := range st.Themes {
		nodes = append(nodes, Button(Type("button"),
			Classes{"swatch": true, "selected": i == st.ThemeIndex%len(st.Themes)},
			Aria("label", t.Name),
			Style(fmt.Sprintf("background:linear-gradient(135deg,%s,%s)", t.Primary, t.Secondary)),
			If(!st.Fullscreen, Post(fmt.Sprintf("/wizard/themes/%d", i))),
		))
	}
	return Div(ID("themes"), Class("themes"), Group(nodes))
}
