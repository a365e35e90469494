package pages

import (
	"encoding/json"

	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/components"
	"github.com/turanweb/turan/web/layouts"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Wizard is the full landing page. The stream loader sits outside #wizard so
// merging a new fragment never reopens the stream.
func Wizard(st wizard.State) Node {
	return layouts.Default("Turan",
		Div(ID("stream"),
			Data("signals", signals(st)),
			Data("on-load", "@get('/wizard/stream')"),
		),
		Fragment(st),
		components.ClearNotice(),
	)
}

// Fragment renders the #wizard element for the session's current state.
func Fragment(st wizard.State) Node {
	return Main(ID("wizard"), Class("wizard"),
		Data("step", st.Kind.String()),
		If(!st.Complete, components.StepProgress(st.Step, st.MaxStep)),
		step(st),
	)
}

func step(st wizard.State) Node {
	if st.Complete {
		return success(st)
	}
	switch st.Kind {
	case wizard.StepName:
		return nameStep(st)
	case wizard.StepVoid:
		return voidStep(st)
	case wizard.StepReveal:
		return revealStep(st)
	case wizard.StepLiveEdits:
		return liveEditsStep(st)
	case wizard.StepStylePicker:
		return stylePickerStep(st)
	case wizard.StepShowcase:
		return showcaseStep(st)
	case wizard.StepDemo:
		return demoStep(st)
	case wizard.StepCallToAction:
		return callToActionStep(st)
	case wizard.StepBrief:
		return briefStep(st)
	}
	return nil
}

// signals seeds the client-side form signals from the brief.
func signals(st wizard.State) string {
	b := st.Brief
	data, err := json.Marshal(map[string]string{
		"name":                b.Name,
		"businessName":        b.BusinessName,
		"businessDescription": b.BusinessDescription,
		"targetAudience":      b.TargetAudience,
		"email":               b.Email,
		"phone":               b.Phone,
		"preferredColors":     b.PreferredColors,
		"competitors":         b.Competitors,
		"additionalNotes":     b.AdditionalNotes,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}

func success(st wizard.State) Node {
	return Div(ID("success"), Class("card success"),
		H1(Class("title"), Text("Рахмет, "+st.Brief.Name+"!")),
		P(Class("subtitle"), Text("Брифіңізді алдық. Хабарласамыз.")),
	)
}
