package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"wip-dashboard/internal/storage"
)

var summaryKey = []byte("summary/dashboard")

func (s *Store) GetSummary(ctx context.Context) (*storage.DashboardSummary, error) {
	const op = "storage.docstore.GetSummary"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var summary storage.DashboardSummary
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(summaryKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &summary)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &summary, nil
}

// PutSummary overwrites the summary document.
func (s *Store) PutSummary(ctx context.Context, summary *storage.DashboardSummary) error {
	const op = "storage.docstore.PutSummary"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("%s: marshal summary: %w", op, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(summaryKey, data)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateSummary reads the summary, passes it to fn and writes fn's result in
// the same transaction. A transaction that loses a race with another writer
// is retried with a fresh read, at most maxRetries times in total; after that
// storage.ErrSummaryConflict is returned and nothing is written.
//
// When no summary document exists fn is not called and applied is false.
func (s *Store) UpdateSummary(ctx context.Context, fn func(*storage.DashboardSummary) (*storage.DashboardSummary, error)) (bool, error) {
	const op = "storage.docstore.UpdateSummary"

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}

		var applied bool
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(summaryKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			var current storage.DashboardSummary
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &current)
			}); err != nil {
				return fmt.Errorf("decode summary: %w", err)
			}

			next, err := fn(&current)
			if err != nil {
				return err
			}

			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}

			if err := txn.Set(summaryKey, data); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}

		return applied, nil
	}

	return false, fmt.Errorf("%s: %w after %d attempts", op, storage.ErrSummaryConflict, s.maxRetries)
}
