package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wip-dashboard/internal/storage"
)

const projectColumns = `id, project_number, project_name, customer, status, estimator, pmc_group,
	sales, cost, hours, labor_sales, labor_cost, date_created, date_updated, project_archived`

type rowScanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Storage) GetAllProjects(ctx context.Context) ([]storage.ProjectRecord, error) {
	const op = "storage.sqlstore.GetAllProjects"

	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []storage.ProjectRecord
	for rows.Next() {
		rec, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return projects, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (*storage.ProjectRecord, error) {
	const op = "storage.sqlstore.GetProject"

	rec, err := s.getProject(ctx, s.db, id, false)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	return rec, nil
}

// InsertProject writes rec as a new project. It fails with
// storage.ErrProjectExists when the id is already taken.
func (s *Storage) InsertProject(ctx context.Context, rec storage.ProjectRecord) error {
	const op = "storage.sqlstore.InsertProject"

	if rec.ID == "" {
		return fmt.Errorf("%s: project id is required", op)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = s.getProject(ctx, tx, rec.ID, true)
	switch {
	case err == nil:
		return fmt.Errorf("%s: id=%s: %w", op, rec.ID, storage.ErrProjectExists)
	case !errors.Is(err, storage.ErrProjectNotFound):
		return fmt.Errorf("%s: id=%s: %w", op, rec.ID, err)
	}

	if err := insertProject(ctx, tx, rec); err != nil {
		return fmt.Errorf("%s: id=%s: %w", op, rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// SaveProject inserts or replaces rec and returns the row as it was before the
// write, or nil when the project is new.
func (s *Storage) SaveProject(ctx context.Context, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	const op = "storage.sqlstore.SaveProject"

	if rec.ID == "" {
		return nil, fmt.Errorf("%s: project id is required", op)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	before, err := s.saveProjectTx(ctx, tx, rec)
	if err != nil {
		return nil, fmt.Errorf("%s: id=%s: %w", op, rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return before, nil
}

// SaveProjects writes all records in one transaction.
func (s *Storage) SaveProjects(ctx context.Context, records []storage.ProjectRecord) error {
	const op = "storage.sqlstore.SaveProjects"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("%s: project id is required", op)
		}
		if _, err := s.saveProjectTx(ctx, tx, rec); err != nil {
			return fmt.Errorf("%s: id=%s: %w", op, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// DeleteProject removes the project and returns its last state.
func (s *Storage) DeleteProject(ctx context.Context, id string) (*storage.ProjectRecord, error) {
	const op = "storage.sqlstore.DeleteProject"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	before, err := s.getProject(ctx, tx, id, true)
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return before, nil
}

// saveProjectTx upserts rec. The before-state read locks the row on MySQL so
// concurrent writers of one project see each other's result.
func (s *Storage) saveProjectTx(ctx context.Context, tx *sql.Tx, rec storage.ProjectRecord) (*storage.ProjectRecord, error) {
	before, err := s.getProject(ctx, tx, rec.ID, true)
	if err != nil && !errors.Is(err, storage.ErrProjectNotFound) {
		return nil, err
	}

	if before == nil {
		return nil, insertProject(ctx, tx, rec)
	}

	created, updated := nullMillis(rec.DateCreated), nullMillis(rec.DateUpdated)

	_, err = tx.ExecContext(ctx, `
		UPDATE projects SET
			project_number = ?, project_name = ?, customer = ?, status = ?, estimator = ?, pmc_group = ?,
			sales = ?, cost = ?, hours = ?, labor_sales = ?, labor_cost = ?,
			date_created = ?, date_updated = ?, project_archived = ?
		WHERE id = ?`,
		rec.ProjectNumber, rec.ProjectName, rec.Customer, rec.Status, rec.Estimator, rec.PMCGroup,
		rec.Sales, rec.Cost, rec.Hours, rec.LaborSales, rec.LaborCost,
		created, updated, rec.ProjectArchived,
		rec.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	return before, nil
}

func insertProject(ctx context.Context, tx *sql.Tx, rec storage.ProjectRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectNumber, rec.ProjectName, rec.Customer, rec.Status, rec.Estimator, rec.PMCGroup,
		rec.Sales, rec.Cost, rec.Hours, rec.LaborSales, rec.LaborCost,
		nullMillis(rec.DateCreated), nullMillis(rec.DateUpdated), rec.ProjectArchived,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (s *Storage) projectQuery(forUpdate bool) string {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	if forUpdate && s.lockRows {
		query += ` FOR UPDATE`
	}
	return query
}

func (s *Storage) getProject(ctx context.Context, q querier, id string, forUpdate bool) (*storage.ProjectRecord, error) {
	row := q.QueryRowContext(ctx, s.projectQuery(forUpdate), id)

	rec, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProjectNotFound
		}
		return nil, err
	}

	return &rec, nil
}

func scanProject(row rowScanner) (storage.ProjectRecord, error) {
	var rec storage.ProjectRecord
	var created, updated sql.NullInt64

	err := row.Scan(
		&rec.ID, &rec.ProjectNumber, &rec.ProjectName, &rec.Customer, &rec.Status, &rec.Estimator, &rec.PMCGroup,
		&rec.Sales, &rec.Cost, &rec.Hours, &rec.LaborSales, &rec.LaborCost,
		&created, &updated, &rec.ProjectArchived,
	)
	if err != nil {
		return storage.ProjectRecord{}, err
	}

	if created.Valid {
		rec.DateCreated = storage.DateOf(created.Int64)
	}
	if updated.Valid {
		rec.DateUpdated = storage.DateOf(updated.Int64)
	}

	return rec, nil
}

func nullMillis(d storage.RawDate) sql.NullInt64 {
	ms, ok := d.EpochMillis()
	return sql.NullInt64{Int64: ms, Valid: ok}
}
