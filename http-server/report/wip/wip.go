package wip

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"wip-dashboard/internal/service/dashboard"
)

type WIPReporter interface {
	WIPReport(ctx context.Context) (*dashboard.WIPReport, error)
}

func GetWIPReport(log *slog.Logger, reporter WIPReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.wip.GetWIPReport"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		report, err := reporter.WIPReport(ctx)
		if err != nil {
			log.Error("failed to build WIP report",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"error": "dashboard data unavailable, try again"})
			return
		}

		render.JSON(w, r, report)
	}
}
