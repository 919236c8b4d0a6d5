package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"wip-dashboard/internal/storage"
)

// changeTimeout bounds summary maintenance after a write.
const changeTimeout = 5 * time.Second

var ErrInvalidProject = errors.New("project number or name is required")

type ProjectStorage interface {
	GetAllProjects(ctx context.Context) ([]storage.ProjectRecord, error)
	GetProject(ctx context.Context, id string) (*storage.ProjectRecord, error)
	InsertProject(ctx context.Context, rec storage.ProjectRecord) error
	SaveProject(ctx context.Context, rec storage.ProjectRecord) (*storage.ProjectRecord, error)
	DeleteProject(ctx context.Context, id string) (*storage.ProjectRecord, error)
}

// ChangeApplier keeps the persisted dashboard summary in step with writes.
type ChangeApplier interface {
	ApplyChange(ctx context.Context, before, after *storage.ProjectRecord) error
}

type Service struct {
	log     *slog.Logger
	storage ProjectStorage
	changes ChangeApplier
	now     func() time.Time
}

func NewService(log *slog.Logger, storage ProjectStorage, changes ChangeApplier) *Service {
	return &Service{
		log:     log,
		storage: storage,
		changes: changes,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context) ([]storage.ProjectRecord, error) {
	const op = "service.project.List"

	projects, err := s.storage.GetAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *Service) Get(ctx context.Context, id string) (*storage.ProjectRecord, error) {
	const op = "service.project.Get"

	rec, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// Create stores a new project. A missing id is generated; a given id that is
// already taken fails with storage.ErrProjectExists.
func (s *Service) Create(ctx context.Context, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	const op = "service.project.Create"

	if err := validate(rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.now()
	if rec.DateCreated.IsZero() {
		rec.DateCreated = storage.DateOf(now)
	}
	rec.DateUpdated = storage.DateOf(now)

	if err := s.storage.InsertProject(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, nil, &rec)

	return &rec, nil
}

// Update replaces an existing project. The creation date is kept when the
// update does not carry one.
func (s *Service) Update(ctx context.Context, id string, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	const op = "service.project.Update"

	if err := validate(rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec.ID = id
	if rec.DateCreated.IsZero() {
		rec.DateCreated = existing.DateCreated
	}
	rec.DateUpdated = storage.DateOf(s.now())

	before, err := s.storage.SaveProject(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, before, &rec)

	return &rec, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service.project.Delete"

	before, err := s.storage.DeleteProject(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, before, nil)

	return nil
}

// notify applies the change to the dashboard summary. The project write has
// already committed, so a failure here is logged and never returned.
func (s *Service) notify(ctx context.Context, before, after *storage.ProjectRecord) {
	const op = "service.project.notify"

	if s.changes == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), changeTimeout)
	defer cancel()

	if err := s.changes.ApplyChange(ctx, before, after); err != nil {
		s.log.Error("dashboard summary not updated",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
}

func validate(rec storage.ProjectRecord) error {
	if strings.TrimSpace(rec.ProjectNumber) == "" && strings.TrimSpace(rec.ProjectName) == "" {
		return ErrInvalidProject
	}
	return nil
}
