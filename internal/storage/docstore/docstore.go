package docstore

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"wip-dashboard/internal/config"
)

const defaultMaxRetries = 5

// Store is the legacy document store: JSON documents in badger, one key per
// document.
type Store struct {
	db         *badger.DB
	maxRetries int
}

func New(cfg config.Config) (*Store, error) {
	return Open(cfg.Docstore.Path, cfg.Docstore.InMemory, cfg.Docstore.MaxRetries)
}

// Open opens the store at path, or a private in-memory store when inMemory is
// set. maxRetries bounds optimistic retries of summary updates.
func Open(path string, inMemory bool, maxRetries int) (*Store, error) {
	const op = "storage.docstore.Open"

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &Store{db: db, maxRetries: maxRetries}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
