package layouts

import (
	"github.com/turanweb/turan/internal/assets"
	"github.com/turanweb/turan/web/helpers"
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/components"
	. "maragu.dev/gomponents/html"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v0.21.4/bundles/datastar.js"

func Default(title string, children ...Node) Node {
	return HTML5(HTML5Props{
		Title:       title,
		Description: "Turan: бизнесіңізге арналған сайтты бірнеше минутта көріңіз және тапсырыс беріңіз.",
		Language:    "kk",
		Head: []Node{
			Link(Rel("icon"), Type("image/svg+xml"), Href(assets.GetHashedAssetPath("/assets/favicon.svg"))),
			// Inline the stylesheet, the landing is a single page
			StyleEl(helpers.RenderStaticToRaw("app.css")),
			Script(Type("module"), Src(datastarScript)),
		},
		Body: []Node{
			Div(Class("page"),
				nav(),
				Group(children),
			),
		},
	})
}

func nav() Node {
	return Nav(
		Class("nav"),
		Aria("label", "Main"),
		A(Href("/"), Aria("label", "Go to homepage"),
			helpers.RenderSVG("logo.svg", "logo"),
		),
	)
}
