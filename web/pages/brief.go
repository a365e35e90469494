package pages

import (
	"errors"
	"fmt"
	"slices"

	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/components"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"
)

func briefStep(st wizard.State) Node {
	problems := problemText(st.Brief)

	var section Node
	switch st.Section {
	case 1:
		section = businessSection(st, problems)
	case 2:
		section = goalSection(st)
	case 3:
		section = extrasSection(st)
	default:
		section = contactSection(st, problems)
	}

	return Div(ID("brief"), Class("card"),
		H1(Class("title"), Text("Бриф")),
		sectionTabs(st),
		section,
		Div(Class("actions"),
			If(st.Section == 1, components.ActionButton(components.ButtonCfg{
				Label: "Артқа", Path: "/wizard/back", Enabled: !st.Submitting, Ghost: true,
			})),
			If(st.Section > 1, components.ActionButton(components.ButtonCfg{
				Label: "Артқа", Path: "/wizard/sections/prev", Enabled: true, Ghost: true,
			})),
			If(st.Section < st.Sections, components.ActionButton(components.ButtonCfg{
				Label: "Келесі", Path: "/wizard/sections/next", Enabled: true, Icon: "arrow-right.svg",
			})),
			If(st.Section >= st.Sections, components.ActionButton(components.ButtonCfg{
				Label: submitLabel(st), Path: "/wizard/submit", Enabled: st.CanSubmit(),
			})),
		),
	)
}

func submitLabel(st wizard.State) string {
	if st.Submitting {
		return "Жіберілуде..."
	}
	return "Жіберу"
}

func sectionTabs(st wizard.State) Node {
	tabs := make([]Node, 0, len(wizard.BriefSections))
	for i, name := range wizard.BriefSections {
		n := i + 1
		tabs = append(tabs, Button(Type("button"),
			Classes{"current": n == st.Section},
			components.Post(fmt.Sprintf("/wizard/sections/%d", n)),
			Text(name),
		))
	}
	return Div(Class("sections"), Group(tabs))
}

// problemText maps inline validation failures to display copy. Missing values
// are only flagged by the disabled submit button.
func problemText(b brief.LeadBrief) map[brief.Field]string {
	out := map[brief.Field]string{}
	for _, p := range brief.Problems(b) {
		switch {
		case errors.Is(p.Err, brief.ErrInvalidEmail):
			out[p.Field] = "Email дұрыс емес"
		case errors.Is(p.Err, brief.ErrShortPhone):
			out[p.Field] = "Телефон нөмірі кемінде 10 таңбадан тұруы керек"
		}
	}
	return out
}

func businessSection(st wizard.State, problems map[brief.Field]string) Node {
	return Div(
		components.TextField(components.InputCfg{
			Field: brief.FieldBusinessName, Label: "Бизнес атауы *", Placeholder: "Мысалы, Alma Coffee",
			Problem: problems[brief.FieldBusinessName],
		}),
		Div(Class("field"),
			Label(Text("Бизнес түрі")),
			choices(brief.FieldBusinessType, brief.BusinessTypes, st.Brief.BusinessType),
		),
		components.TextField(components.InputCfg{
			Field: brief.FieldBusinessDescription, Label: "Бизнес сипаттамасы", Multiline: true,
		}),
		components.TextField(components.InputCfg{
			Field: brief.FieldTargetAudience, Label: "Мақсатты аудитория",
		}),
	)
}

func goalSection(st wizard.State) Node {
	goals := make([]Node, 0, len(brief.Goals))
	for i, g := range brief.Goals {
		goals = append(goals, components.Choice(g.Label, g.ID == st.Brief.WebsiteGoal,
			fmt.Sprintf("/wizard/choices/%s/%d", brief.FieldWebsiteGoal, i)))
	}
	features := make([]Node, 0, len(brief.Features))
	for i, f := range brief.Features {
		features = append(features, components.Choice(f, slices.Contains(st.Brief.FeaturesNeeded, f),
			fmt.Sprintf("/wizard/features/%d", i)))
	}

	return Div(
		Div(Class("field"),
			Label(Text("Сайттың мақсаты")),
			Div(Class("choices"), Group(goals)),
		),
		Div(Class("field"),
			Label(Text("Қажетті функциялар")),
			Div(Class("choices"), Group(features)),
		),
	)
}

func extrasSection(st wizard.State) Node {
	flag := func(f brief.Field, label string, on bool) Node {
		return components.Choice(label, on, "/wizard/flags/"+string(f))
	}
	return Div(
		Div(Class("field"),
			Label(Text("Сізде бар")),
			Div(Class("choices"),
				flag(brief.FieldHasLogo, "Логотип", st.Brief.HasLogo),
				flag(brief.FieldHasContent, "Мәтіндер", st.Brief.HasContent),
				flag(brief.FieldHasPhotos, "Фотолар", st.Brief.HasPhotos),
			),
		),
		components.TextField(components.InputCfg{Field: brief.FieldPreferredColors, Label: "Қалаған түстер"}),
		components.TextField(components.InputCfg{Field: brief.FieldCompetitors, Label: "Бәсекелестер"}),
		Div(Class("field"),
			Label(Text("Бюджет")),
			choices(brief.FieldBudgetRange, brief.BudgetRanges, st.Brief.BudgetRange),
		),
		Div(Class("field"),
			Label(Text("Мерзім")),
			choices(brief.FieldDeadline, brief.Deadlines, st.Brief.Deadline),
		),
		components.TextField(components.InputCfg{
			Field: brief.FieldAdditionalNotes, Label: "Қосымша ескертпелер", Multiline: true,
		}),
	)
}

func contactSection(st wizard.State, problems map[brief.Field]string) Node {
	return Div(
		components.TextField(components.InputCfg{Field: brief.FieldName, Label: "Атыңыз"}),
		components.TextField(components.InputCfg{
			Field: brief.FieldEmail, Label: "Email *", Placeholder: "name@example.kz",
			Problem: problems[brief.FieldEmail],
		}),
		components.TextField(components.InputCfg{
			Field: brief.FieldPhone, Label: "Телефон *", Placeholder: "+7 700 000 00 00",
			Problem: problems[brief.FieldPhone],
		}),
	)
}

func choices(f brief.Field, values []string, selected string) Node {
	nodes := make([]Node, 0, len(values))
	for i, v := range values {
		nodes = append(nodes, components.Choice(v, v == selected, fmt.Sprintf("/wizard/choices/%s/%d", f, i)))
	}
	return Div(Class("choices"), Group(nodes))
}
