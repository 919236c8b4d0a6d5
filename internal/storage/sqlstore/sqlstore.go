package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"wip-dashboard/internal/config"
)

// Schema is written in the subset of SQL both MySQL and SQLite accept.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id               VARCHAR(64)  NOT NULL PRIMARY KEY,
	project_number   VARCHAR(64)  NOT NULL DEFAULT '',
	project_name     VARCHAR(255) NOT NULL DEFAULT '',
	customer         VARCHAR(255) NOT NULL DEFAULT '',
	status           VARCHAR(64)  NOT NULL DEFAULT '',
	estimator        VARCHAR(128) NOT NULL DEFAULT '',
	pmc_group        VARCHAR(128) NOT NULL DEFAULT '',
	sales            DOUBLE       NOT NULL DEFAULT 0,
	cost             DOUBLE       NOT NULL DEFAULT 0,
	hours            DOUBLE       NOT NULL DEFAULT 0,
	labor_sales      DOUBLE       NOT NULL DEFAULT 0,
	labor_cost       DOUBLE       NOT NULL DEFAULT 0,
	date_created     BIGINT       NULL,
	date_updated     BIGINT       NULL,
	project_archived BOOLEAN      NOT NULL DEFAULT FALSE
)`

type Storage struct {
	db *sql.DB
	// lockRows adds FOR UPDATE to before-state reads. SQLite serializes
	// writers on its single connection and rejects the clause.
	lockRows bool
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.sqlstore.New"

	driver := cfg.DB.Driver
	if driver == "" {
		driver = "mysql"
	}

	db, err := sql.Open(driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if driver == "sqlite" {
		// one connection avoids "database is locked" and keeps :memory: shared
		db.SetMaxOpenConns(1)
	}

	return NewWithDB(db, driver), nil
}

// NewWithDB wraps an already opened database of the given driver.
func NewWithDB(db *sql.DB, driver string) *Storage {
	return &Storage{db: db, lockRows: driver == "mysql"}
}

func (s *Storage) InitSchema(ctx context.Context) error {
	const op = "storage.sqlstore.InitSchema"

	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
