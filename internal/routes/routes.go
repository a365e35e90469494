package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gsessions "github.com/gorilla/sessions"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/turanweb/turan/internal/assets"
	"github.com/turanweb/turan/internal/handlers"
	"github.com/turanweb/turan/internal/middlewares"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
)

type Deps struct {
	Logger      *slog.Logger
	Cookies     gsessions.Store
	Sessions    sessions.Store
	Registry    *wizard.Registry
	NATS        *nats.Conn
	Mount       middlewares.Mount
	DefaultFlow wizard.Variant
	Gatherer    prometheus.Gatherer

	// Funnel is nil when analytics are disabled.
	Funnel handlers.Summarizer
	// Admins maps basic auth users to passwords; empty disables the report.
	Admins map[string]string
	Dev    bool
}

func AddRoutes(mux *chi.Mux, d Deps) {
	assets.HttpHandler(mux)

	mux.Get("/", handlers.Index(d.Logger, d.Cookies, d.Sessions, d.Registry, d.Mount, d.DefaultFlow))

	mux.Route("/wizard", func(mux chi.Router) {
		mux.Use(middlewares.WizardSession(d.Logger, d.Cookies, d.Sessions, d.Registry, d.Mount))

		mux.Get("/stream", handlers.Stream(d.Logger, d.NATS, d.Registry))

		simple := func(op func(ws *wizard.Session) error) http.HandlerFunc {
			return handlers.Simple(d.Logger, op)
		}
		mux.Post("/advance", simple((*wizard.Session).Advance))
		mux.Post("/back", simple((*wizard.Session).Back))
		mux.Post("/agree", simple((*wizard.Session).Agree))
		mux.Post("/continue", simple((*wizard.Session).Continue))
		mux.Post("/play", simple((*wizard.Session).Play))
		mux.Post("/pause", simple((*wizard.Session).Pause))
		mux.Post("/toggle", simple((*wizard.Session).TogglePlay))
		mux.Post("/forward", simple((*wizard.Session).Forward))
		mux.Post("/backward", simple((*wizard.Session).Backward))
		mux.Post("/stop", simple((*wizard.Session).Stop))
		mux.Post("/sections/next", simple((*wizard.Session).NextSection))
		mux.Post("/sections/prev", simple((*wizard.Session).PrevSection))
		mux.Post("/sections/{index}", handlers.Action(d.Logger, handlers.GoSection))
		mux.Post("/themes/{index}", handlers.Action(d.Logger, handlers.SelectTheme))
		mux.Post("/fields/{field}", handlers.Action(d.Logger, handlers.SetField))
		mux.Post("/flags/{field}", handlers.Action(d.Logger, handlers.ToggleFlag))
		mux.Post("/features/{index}", handlers.Action(d.Logger, handlers.ToggleFeature))
		mux.Post("/choices/{field}/{index}", handlers.Action(d.Logger, handlers.Choose))
		mux.Post("/submit", handlers.Action(d.Logger, handlers.Submit))
	})

	if d.Funnel != nil && len(d.Admins) > 0 {
		mux.Route("/admin", func(mux chi.Router) {
			mux.Use(middleware.BasicAuth("turan", d.Admins))
			mux.Get("/funnel", handlers.FunnelReport(d.Logger, d.Funnel))
		})
	}

	if d.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	if d.Dev {
		mux.Get("/hotreload", handlers.HotReload())
	}
}
