package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"wip-dashboard/internal/storage"
)

const MsgUnavailable = "dashboard data unavailable, try again"

type ResponseError struct {
	Error string `json:"error"`
}

type Dashboard interface {
	Dashboard(ctx context.Context) (*storage.DashboardSummary, error)
}

type StoredSummary interface {
	StoredSummary(ctx context.Context) (*storage.DashboardSummary, error)
}

// GetDashboard recomputes the summary from every current project record.
func GetDashboard(log *slog.Logger, dashboard Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.dashboard.get.GetDashboard"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		summary, err := dashboard.Dashboard(ctx)
		if err != nil {
			log.Error("failed to build dashboard", slog.String("error", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, ResponseError{Error: MsgUnavailable})
			return
		}

		render.JSON(w, r, summary)
	}
}

// GetStoredSummary returns the incrementally maintained summary document.
func GetStoredSummary(log *slog.Logger, stored StoredSummary) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.dashboard.get.GetStoredSummary"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		summary, err := stored.StoredSummary(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrSummaryNotFound) {
				log.Warn("summary requested before bootstrap")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, ResponseError{Error: "dashboard summary has not been built yet"})
				return
			}
			log.Error("failed to read stored summary", slog.String("error", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, ResponseError{Error: MsgUnavailable})
			return
		}

		render.JSON(w, r, summary)
	}
}
