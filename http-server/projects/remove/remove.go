package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"wip-dashboard/internal/storage"
)

type ProjectDeleter interface {
	Delete(ctx context.Context, id string) error
}

func DeleteProject(log *slog.Logger, deleter ProjectDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.projects.remove.DeleteProject"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing project id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.Delete(ctx, id); err != nil {
			if errors.Is(err, storage.ErrProjectNotFound) {
				http.Error(w, "Project not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete project", slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("project deleted", slog.String("id", id))

		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"id":     id,
		})
	}
}
