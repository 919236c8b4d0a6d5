package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"wip-dashboard/internal/service/project"
	"wip-dashboard/internal/storage"
)

type ProjectWriter interface {
	Create(ctx context.Context, rec storage.ProjectRecord) (*storage.ProjectRecord, error)
	Update(ctx context.Context, id string, rec storage.ProjectRecord) (*storage.ProjectRecord, error)
}

type Response struct {
	Status  string                 `json:"status"`
	Project *storage.ProjectRecord `json:"project"`
}

func CreateProject(log *slog.Logger, writer ProjectWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.projects.save.CreateProject"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req storage.ProjectRecord
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := writer.Create(ctx, req)
		if err != nil {
			writeError(w, log, err)
			return
		}

		log.Info("project created", slog.String("id", rec.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Status: "success", Project: rec})
	}
}

func UpdateProject(log *slog.Logger, writer ProjectWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.projects.save.UpdateProject"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Missing project id", http.StatusBadRequest)
			return
		}

		var req storage.ProjectRecord
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			http.Error(w, "Bad request: invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := writer.Update(ctx, id, req)
		if err != nil {
			writeError(w, log, err)
			return
		}

		log.Info("project updated", slog.String("id", rec.ID))

		render.JSON(w, r, Response{Status: "success", Project: rec})
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, project.ErrInvalidProject):
		http.Error(w, project.ErrInvalidProject.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrProjectNotFound):
		http.Error(w, "Project not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrProjectExists):
		http.Error(w, "Project already exists", http.StatusConflict)
	default:
		log.Error("failed to save project", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
