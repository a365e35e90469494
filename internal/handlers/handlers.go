package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	gsessions "github.com/gorilla/sessions"
	"github.com/nats-io/nats.go"
	datastar "github.com/starfederation/datastar/sdk/go"
	"github.com/turanweb/turan/internal/events"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/pages"
	. "maragu.dev/gomponents"
)

// NewMount returns a function building live sessions that share opts.
func NewMount(opts wizard.Options) func(sessions.Data) (*wizard.Session, error) {
	return func(data sessions.Data) (*wizard.Session, error) {
		flow, err := wizard.FlowFor(wizard.Variant(data.Flow))
		if err != nil {
			return nil, err
		}
		return wizard.NewSession(data.ID, flow, opts), nil
	}
}

// Index mounts a fresh wizard for every page load, unmounting the one the
// visitor's cookie still points to. The flow defaults to defaultFlow and can
// be overridden with ?flow=.
func Index(
	logger *slog.Logger,
	cookies gsessions.Store,
	store sessions.Store,
	registry *wizard.Registry,
	mount func(sessions.Data) (*wizard.Session, error),
	defaultFlow wizard.Variant,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow := defaultFlow
		if q := r.URL.Query().Get("flow"); q != "" {
			if _, err := wizard.FlowFor(wizard.Variant(q)); err == nil {
				flow = wizard.Variant(q)
			}
		}

		if prev, err := sessions.LoadID(cookies, r); err == nil {
			registry.Remove(prev)
			if err := store.Delete(r.Context(), prev); err != nil {
				logger.LogAttrs(
					r.Context(),
					slog.LevelWarn,
					"failed to delete previous session",
					slog.String("sid", prev),
					slog.String("error", err.Error()),
				)
			}
		}

		sData := sessions.Data{
			ID:        uniuri.NewLen(28),
			Flow:      string(flow),
			CreatedAt: time.Now().Unix(),
		}
		if err := store.Create(r.Context(), sData); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to store session",
				slog.String("error", err.Error()),
			)
			return
		}

		ws, err := mount(sData)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to mount session",
				slog.String("error", err.Error()),
			)
			return
		}
		registry.Put(ws)

		if err := sessions.SaveID(cookies, w, r, sData.ID); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to set session cookie",
				slog.String("error", err.Error()),
			)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pages.Wizard(ws.Snapshot()).Render(w); err != nil {
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to render page",
				slog.String("error", err.Error()),
			)
		}
	}
}

// Stream keeps the visitor's #wizard fragment in sync with the session,
// re-rendering whenever the session announces a change. The live session is
// looked up again on every change, it may have been mounted anew.
func Stream(logger *slog.Logger, nc *nats.Conn, registry *wizard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sData := sessions.GetData(r.Context())
		ws := sessions.GetWizard(r.Context())

		changes := make(chan *nats.Msg, 16)
		sub, err := nc.ChanSubscribe(events.SessionSubject(sData.ID), changes)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to subscribe to session changes",
				slog.String("sid", sData.ID),
				slog.String("error", err.Error()),
			)
			return
		}

		sse := datastar.NewSSE(w, r)
		if err := mergeWizard(sse, ws); err != nil {
			sub.Unsubscribe()
			return
		}

	loop:
		for {
			select {
			case <-changes:
				// Coalesce bursts, the snapshot already reflects all of them
				for len(changes) > 0 {
					<-changes
				}
				if current, ok := registry.Get(sData.ID); ok {
					ws = current
				}
				if err := mergeWizard(sse, ws); err != nil {
					sub.Unsubscribe()
					break loop
				}
			case <-r.Context().Done():
				sub.Unsubscribe()
				break loop
			}
		}
	}
}

func mergeWizard(sse *datastar.ServerSentEventGenerator, ws *wizard.Session) error {
	return mergeNode(sse, pages.Fragment(ws.Snapshot()))
}

func mergeNode(sse *datastar.ServerSentEventGenerator, n Node) error {
	buff := new(bytes.Buffer)
	if err := n.Render(buff); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return sse.MergeFragments(buff.String())
}

var hotReloadOnce sync.Once

func HotReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		hotReloadOnce.Do(func() {
			// Refresh the client page as soon as connection
			// is established. This will occur only once
			// after the server starts.
			sse.ExecuteScript(
				"window.location.reload()",
				datastar.WithExecuteScriptRetryDuration(time.Second),
			)
		})

		// Freeze the event stream until the connection
		// is lost for any reason. This will force the client
		// to attempt to reconnect after the server reboots.
		<-r.Context().Done()
	}
}
