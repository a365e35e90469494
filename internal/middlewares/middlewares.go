package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	gsessions "github.com/gorilla/sessions"
	datastar "github.com/starfederation/datastar/sdk/go"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
)

// Mount builds the live wizard for a stored session record.
type Mount func(data sessions.Data) (*wizard.Session, error)

// WizardSession resolves the visitor's cookie to a stored session and its
// live wizard. A session that outlived the process is mounted again from its
// record. Visitors without a usable session are sent back to the landing.
func WizardSession(logger *slog.Logger, cookies gsessions.Store, store sessions.Store, registry *wizard.Registry, mount Mount) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := sessions.LoadID(cookies, r)
			if err != nil {
				restart(w, r)
				return
			}

			// Retrieve session data
			sData, err := store.Get(r.Context(), sid)
			if err != nil {
				if errors.Is(err, sessions.ErrNotFound) {
					registry.Remove(sid)
					restart(w, r)
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
				logger.LogAttrs(
					r.Context(),
					slog.LevelError,
					"failed to fetch session",
					slog.String("sid", sid),
					slog.String("error", err.Error()),
				)
				return
			}

			if err := store.Touch(r.Context(), sData); err != nil {
				logger.LogAttrs(
					r.Context(),
					slog.LevelWarn,
					"failed to refresh session",
					slog.String("sid", sid),
					slog.String("error", err.Error()),
				)
			}

			ws, ok := registry.Get(sid)
			if !ok {
				ws, err = mount(sData)
				if err != nil {
					w.WriteHeader(http.StatusBadRequest)
					logger.LogAttrs(
						r.Context(),
						slog.LevelWarn,
						"failed to mount session",
						slog.String("sid", sid),
						slog.String("error", err.Error()),
					)
					return
				}
				registry.Put(ws)
			}

			// Add session data to request
			ctx := sessions.WithData(r.Context(), &sData)
			ctx = sessions.WithWizard(ctx, ws)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func restart(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	sse.Redirect("/")
}
