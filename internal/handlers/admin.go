package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/turanweb/turan/internal/funnel"
	"github.com/turanweb/turan/web/pages"
)

// Summarizer is satisfied by *funnel.Store.
type Summarizer interface {
	Summary(ctx context.Context) (funnel.Summary, error)
}

func FunnelReport(logger *slog.Logger, funnelStore Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := funnelStore.Summary(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to summarize funnel",
				slog.String("error", err.Error()),
			)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pages.FunnelReport(summary).Render(w); err != nil {
			logger.LogAttrs(
				r.Context(),
				slog.LevelError,
				"failed to render funnel report",
				slog.String("error", err.Error()),
			)
		}
	}
}
