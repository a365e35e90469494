package pages

import (
	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/components"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func advanceButton(st wizard.State, label string) Node {
	return components.ActionButton(components.ButtonCfg{
		Label:   label,
		Path:    "/wizard/advance",
		Enabled: st.CanAdvance(),
		Icon:    "arrow-right.svg",
	})
}

func nameStep(st wizard.State) Node {
	return Div(Class("card"),
		H1(Class("title"), Text("Сайтыңызды бірге жасайық")),
		P(Class("subtitle"), Text("Алдымен танысайық. Сізді қалай атаймыз?")),
		components.TextField(components.InputCfg{
			Field:       brief.FieldName,
			Label:       "Атыңыз",
			Placeholder: "Мысалы, Айгерім",
		}),
		Div(Class("actions"), advanceButton(st, "Жалғастыру")),
	)
}

func voidStep(st wizard.State) Node {
	return Div(Class("card void"),
		Div(
			H1(Class("title"), Text(st.Brief.Name+", сайтыңыз әзірге бос.")),
			P(Class("subtitle"), Text("Бірақ бұл ұзаққа созылмайды.")),
			If(st.VoidReady, Div(Class("actions"), advanceButton(st, "Көрсету"))),
		),
	)
}

func revealStep(st wizard.State) Node {
	var overlay Node
	if st.Reveal == wizard.RevealPopup {
		overlay = popup(st, "/wizard/agree")
	}
	return components.ThemePreview(st, components.PreviewCfg{
		Blurred: st.Reveal != wizard.RevealUnblur,
		Overlay: overlay,
	})
}

func liveEditsStep(st wizard.State) Node {
	return Group([]Node{
		components.ThemePreview(st, components.PreviewCfg{}),
		components.ChatLog(st.Chat),
	})
}

func stylePickerStep(st wizard.State) Node {
	return Group([]Node{
		H2(Class("title"), Text("Стильді таңдаңыз")),
		components.ThemePreview(st, components.PreviewCfg{}),
		components.ThemePicker(st),
		Div(Class("actions"), components.ActionButton(components.ButtonCfg{
			Label:   "Осы стиль",
			Path:    "/wizard/continue",
			Enabled: !st.Fullscreen,
		})),
	})
}

func showcaseStep(st wizard.State) Node {
	return Group([]Node{
		components.ThemePreview(st, components.PreviewCfg{}),
		Div(Class("actions"), advanceButton(st, "Әрі қарай")),
	})
}

func demoStep(st wizard.State) Node {
	var view Node
	switch st.Sub {
	case wizard.SubReveal:
		view = components.ThemePreview(st, components.PreviewCfg{Blurred: true})
	case wizard.SubPopup:
		view = components.ThemePreview(st, components.PreviewCfg{
			Blurred: true,
			Overlay: popup(st, "/wizard/agree"),
		})
	case wizard.SubTransform:
		view = components.ThemePreview(st, components.PreviewCfg{})
	case wizard.SubChat:
		view = Group([]Node{
			components.ThemePreview(st, components.PreviewCfg{}),
			components.ChatLog(st.Chat),
		})
	case wizard.SubStyle:
		view = Group([]Node{
			components.ThemePreview(st, components.PreviewCfg{}),
			components.ThemePicker(st),
			Div(Class("actions"), components.ActionButton(components.ButtonCfg{
				Label:   "Осы стиль",
				Path:    "/wizard/continue",
				Enabled: !st.Fullscreen,
			})),
		})
	}
	return Group([]Node{
		view,
		components.PlayerControls(st),
	})
}

func popup(st wizard.State, agreePath string) Node {
	return Div(ID("popup"), Class("popup"),
		P(Text(st.PopupText)),
		components.ActionButton(components.ButtonCfg{
			Label:   "Келісемін",
			Path:    agreePath,
			Enabled: true,
		}),
	)
}

func callToActionStep(st wizard.State) Node {
	return Div(Class("card"),
		H1(Class("title"), Text(st.Brief.Name+", осындай сайт сіздікі болсын!")),
		P(Class("subtitle"), Text("Бизнесіңіз туралы бірнеше сұраққа жауап беріңіз, біз сізге толық нұсқасын дайындаймыз.")),
		Div(Class("actions"), advanceButton(st, "Бриф толтыру")),
	)
}
