package pages

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/turanweb/turan/internal/funnel"
	"github.com/turanweb/turan/web/layouts"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// FunnelReport shows how far visitors get through each flow.
func FunnelReport(s funnel.Summary) Node {
	last := "-"
	if !s.LastEventAt.IsZero() {
		last = humanize.Time(s.LastEventAt)
	}

	return layouts.Default("Turan · Funnel",
		Main(Class("wizard"),
			H1(Class("title"), Text("Funnel")),
			P(Class("subtitle"), Text(fmt.Sprintf("%s sessions, last event %s", humanize.Comma(s.Sessions), last))),
			Table(Class("report"),
				THead(Tr(Th(Text("Flow")), Th(Text("Step")), Th(Text("Kind")), Th(Text("Sessions")), Th(Text("Share")))),
				TBody(Map(s.Steps, func(c funnel.StepCount) Node {
					return Tr(
						Td(Text(c.Flow)),
						Td(Text(fmt.Sprint(c.Step))),
						Td(Text(c.StepKind)),
						Td(Text(humanize.Comma(c.Sessions))),
						Td(Text(share(c.Sessions, s.Sessions))),
					)
				})),
			),
			Table(Class("report"),
				THead(Tr(Th(Text("Flow")), Th(Text("Outcome")), Th(Text("Submissions")))),
				TBody(Map(s.Outcomes, func(c funnel.OutcomeCount) Node {
					return Tr(
						Td(Text(c.Flow)),
						Td(Text(c.Outcome)),
						Td(Text(humanize.Comma(c.Count))),
					)
				})),
			),
		),
	)
}

func share(n, total int64) string {
	if total == 0 {
		return "0%"
	}
	return humanize.FtoaWithDigits(float64(n)*100/float64(total), 1) + "%"
}
