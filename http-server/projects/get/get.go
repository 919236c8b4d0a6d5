package get

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

type ResponseProjects struct {
	Projects []storage.ProjectRecord `json:"projects"`
	Count    int                     `json:"count"`
}

type Projects interface {
	List(ctx context.Context) ([]storage.ProjectRecord, error)
	Get(ctx context.Context, id string) (*storage.ProjectRecord, error)
}

func GetProjects(log *slog.Logger, projects Projects) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.projects.get.GetProjects"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := projects.List(ctx)
		if err != nil {
			log.Error("failed to list projects",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if list == nil {
			list = []storage.ProjectRecord{}
		}

		render.JSON(w, r, ResponseProjects{Projects: list, Count: len(list)})
	}
}

func GetProject(log *slog.Logger, projects Projects) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.projects.get.GetProject"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing project id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := projects.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrProjectNotFound) {
				http.Error(w, "Project not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get project",
				slog.String("op", op),
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, rec)
	}
}
