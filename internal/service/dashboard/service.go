package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"wip-dashboard/internal/storage"
)

type RecordSource interface {
	GetAllProjects(ctx context.Context) ([]storage.ProjectRecord, error)
}

type SummaryStore interface {
	GetSummary(ctx context.Context) (*storage.DashboardSummary, error)
	PutSummary(ctx context.Context, summary *storage.DashboardSummary) error
	UpdateSummary(ctx context.Context, fn func(*storage.DashboardSummary) (*storage.DashboardSummary, error)) (bool, error)
}

type WIPReport struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Rows        []storage.ProjectRecord   `json:"rows"`
	Summary     *storage.DashboardSummary `json:"summary"`
}

type Service struct {
	log       *slog.Logger
	rules     Rules
	summaries SummaryStore
	sources   []RecordSource
	now       func() time.Time
}

func NewService(log *slog.Logger, rules Rules, summaries SummaryStore, sources ...RecordSource) *Service {
	return &Service{
		log:       log,
		rules:     rules,
		summaries: summaries,
		sources:   sources,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Rules() Rules {
	return s.rules
}

// Records fetches every source concurrently and concatenates the results in
// source order. A record whose ID an earlier source already returned is
// dropped, so a project copied from the legacy store into the SQL store counts
// once.
func (s *Service) Records(ctx context.Context) ([]storage.ProjectRecord, error) {
	const op = "service.dashboard.Records"

	results := make([][]storage.ProjectRecord, len(s.sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			records, err := src.GetAllProjects(gCtx)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	all := make([]storage.ProjectRecord, 0, total)
	seen := make(map[string]int, total)
	var shadowed int
	for i, r := range results {
		for _, rec := range r {
			if rec.ID != "" {
				if first, ok := seen[rec.ID]; ok && first < i {
					shadowed++
					continue
				}
				seen[rec.ID] = i
			}
			all = append(all, rec)
		}
	}

	if shadowed > 0 {
		s.log.Debug("records shadowed by an earlier source",
			slog.String("op", op),
			slog.Int("count", shadowed),
		)
	}

	return all, nil
}

// Dashboard computes the live dashboard summary from the full record set.
func (s *Service) Dashboard(ctx context.Context) (*storage.DashboardSummary, error) {
	const op = "service.dashboard.Dashboard"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := Rebuild(records, s.rules, VariantDashboard)
	summary.LastUpdated = s.now()

	return summary, nil
}

// WIPReport returns the deduplicated rows behind the dashboard together with
// their summary.
func (s *Service) WIPReport(ctx context.Context) (*WIPReport, error) {
	const op = "service.dashboard.WIPReport"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := s.rules.Deduplicate(s.rules.Filter(records, VariantDashboard))
	summary := NewSummary()
	for _, rec := range rows {
		s.rules.Apply(summary, rec, 1)
	}
	Prune(summary)

	now := s.now()
	summary.LastUpdated = now

	return &WIPReport{GeneratedAt: now, Rows: rows, Summary: summary}, nil
}

func (s *Service) StoredSummary(ctx context.Context) (*storage.DashboardSummary, error) {
	const op = "service.dashboard.StoredSummary"

	summary, err := s.summaries.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summary, nil
}

// RebuildStored recomputes the persisted summary from the full record set and
// overwrites the stored document. It is not serialized against concurrent
// ApplyChange calls.
func (s *Service) RebuildStored(ctx context.Context) (*storage.DashboardSummary, error) {
	const op = "service.dashboard.RebuildStored"

	records, err := s.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := Bootstrap(records, s.rules)
	summary.LastUpdated = s.now()

	if err := s.summaries.PutSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("dashboard summary rebuilt",
		slog.String("op", op),
		slog.Int("records", len(records)),
		slog.String("total_sales", summary.TotalSales.String()),
	)

	return summary, nil
}

// ApplyChange folds one record change into the persisted summary. A missing
// summary document is skipped without error until RebuildStored has run.
func (s *Service) ApplyChange(ctx context.Context, before, after *storage.ProjectRecord) error {
	const op = "service.dashboard.ApplyChange"

	changeID := ulid.Make().String()
	log := s.log.With(slog.String("op", op), slog.String("change_id", changeID))

	applied, err := s.summaries.UpdateSummary(ctx, func(current *storage.DashboardSummary) (*storage.DashboardSummary, error) {
		next := ApplyDelta(current, before, after, s.rules)
		next.LastUpdated = s.now()
		return next, nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrSummaryConflict) {
			log.Warn("summary update gave up after retries", slog.String("error", err.Error()))
		}
		return fmt.Errorf("%s: change %s: %w", op, changeID, err)
	}

	if !applied {
		log.Debug("summary not bootstrapped, change skipped")
		return nil
	}

	log.Debug("summary updated", slog.String("project_id", changedID(before, after)))
	return nil
}

func changedID(before, after *storage.ProjectRecord) string {
	if after != nil {
		return after.ID
	}
	if before != nil {
		return before.ID
	}
	return ""
}
