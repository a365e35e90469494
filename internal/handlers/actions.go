package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	datastar "github.com/starfederation/datastar/sdk/go"
	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
	"github.com/turanweb/turan/web/components"
)

var errBadInput = errors.New("handlers: bad input")

// Action runs op against the request's wizard and answers with the fresh
// fragment. A rejected op leaves the session untouched and surfaces a notice.
func Action(logger *slog.Logger, op func(r *http.Request, ws *wizard.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sData := sessions.GetData(r.Context())
		ws := sessions.GetWizard(r.Context())

		err := op(r, ws)
		if errors.Is(err, errBadInput) {
			w.WriteHeader(http.StatusBadRequest)
			logger.LogAttrs(
				r.Context(),
				slog.LevelWarn,
				"rejected malformed action",
				slog.String("sid", sData.ID),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			return
		}

		sse := datastar.NewSSE(w, r)
		if err != nil {
			logger.LogAttrs(
				r.Context(),
				slog.LevelInfo,
				"wizard action rejected",
				slog.String("sid", sData.ID),
				slog.String("flow", sData.Flow),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			mergeNode(sse, components.Notice(noticeText(err)))
			return
		}

		mergeNode(sse, components.ClearNotice())
		mergeWizard(sse, ws)
	}
}

// Simple adapts a session method that needs nothing from the request.
func Simple(logger *slog.Logger, op func(ws *wizard.Session) error) http.HandlerFunc {
	return Action(logger, func(_ *http.Request, ws *wizard.Session) error {
		return op(ws)
	})
}

func noticeText(err error) string {
	switch {
	case errors.Is(err, wizard.ErrNotReady):
		return "Алдымен осы қадамды аяқтаңыз"
	case errors.Is(err, wizard.ErrCannotSubmit):
		return "Бизнес атауын, email және телефонды толтырыңыз"
	case errors.Is(err, wizard.ErrSubmitting):
		return "Бриф жіберілуде, күте тұрыңыз"
	case errors.Is(err, wizard.ErrComplete):
		return "Бриф жіберіліп қойған"
	case errors.Is(err, brief.ErrNotInCatalog), errors.Is(err, brief.ErrUnknownField), errors.Is(err, brief.ErrFieldKind):
		return "Мұндай мән жоқ"
	}
	return "Бұл әрекет қазір қолжетімсіз"
}

// SetField stores the value of the field named in the path, read from the
// datastar signals sent with the request.
func SetField(r *http.Request, ws *wizard.Session) error {
	f, err := brief.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		return fmt.Errorf("%w: %w", errBadInput, err)
	}
	signals, err := readSignals(r)
	if err != nil {
		return fmt.Errorf("%w: %w", errBadInput, err)
	}
	raw, ok := signals[string(f)]
	if !ok {
		return fmt.Errorf("%w: signal %s missing", errBadInput, f)
	}

	if f.IsFlag() {
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: %w", errBadInput, err)
		}
		return ws.SetFlag(f, v)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %w", errBadInput, err)
	}
	return ws.SetField(f, v)
}

func ToggleFlag(r *http.Request, ws *wizard.Session) error {
	f, err := brief.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		return fmt.Errorf("%w: %w", errBadInput, err)
	}
	return ws.ToggleFlag(f)
}

func ToggleFeature(r *http.Request, ws *wizard.Session) error {
	i, err := index(r)
	if err != nil {
		return err
	}
	if i >= len(brief.Features) {
		return fmt.Errorf("%w: feature %d", errBadInput, i)
	}
	return ws.ToggleFeature(brief.Features[i])
}

func Choose(r *http.Request, ws *wizard.Session) error {
	f, err := brief.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		return fmt.Errorf("%w: %w", errBadInput, err)
	}
	i, err := index(r)
	if err != nil {
		return err
	}
	return ws.Choose(f, i)
}

func SelectTheme(r *http.Request, ws *wizard.Session) error {
	i, err := index(r)
	if err != nil {
		return err
	}
	return ws.SelectTheme(i)
}

func GoSection(r *http.Request, ws *wizard.Session) error {
	i, err := index(r)
	if err != nil {
		return err
	}
	return ws.GoSection(i)
}

// Submit hands the brief to the leads API. Failures are reported by the
// session's outcome, the visitor always lands on the thank-you screen.
func Submit(r *http.Request, ws *wizard.Session) error {
	_, err := ws.Submit(r.Context())
	return err
}

func index(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: index %q", errBadInput, chi.URLParam(r, "index"))
	}
	return i, nil
}

// readSignals decodes the datastar signals of a request: the query for GET,
// the JSON body otherwise.
func readSignals(r *http.Request) (map[string]json.RawMessage, error) {
	signals := map[string]json.RawMessage{}
	if r.Method == http.MethodGet {
		if err := json.Unmarshal([]byte(r.URL.Query().Get("datastar")), &signals); err != nil {
			return nil, err
		}
		return signals, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&signals); err != nil {
		return nil, err
	}
	return signals, nil
}
