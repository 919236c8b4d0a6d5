package rebuild

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"wip-dashboard/internal/storage"
)

type Rebuilder interface {
	RebuildStored(ctx context.Context) (*storage.DashboardSummary, error)
}

type Response struct {
	Status  string                    `json:"status"`
	Summary *storage.DashboardSummary `json:"summary,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

func RebuildSummary(log *slog.Logger, rebuilder Rebuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.dashboard.rebuild.RebuildSummary"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		summary, err := rebuilder.RebuildStored(ctx)
		if err != nil {
			log.Error("summary rebuild failed", slog.String("error", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, Response{Status: "error", Error: "dashboard data unavailable, try again"})
			return
		}

		log.Info("summary rebuilt")

		render.JSON(w, r, Response{Status: "success", Summary: summary})
	}
}
