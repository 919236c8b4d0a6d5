package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"

	"wip-dashboard/internal/storage"
)

const projectPrefix = "projects/"

func projectKey(id string) []byte {
	return []byte(projectPrefix + id)
}

// GetAllProjects returns every legacy project document. Documents without an
// id field take the id from their key.
func (s *Store) GetAllProjects(ctx context.Context) ([]storage.ProjectRecord, error) {
	const op = "storage.docstore.GetAllProjects"

	var projects []storage.ProjectRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(projectPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			key := string(item.Key())

			var rec storage.ProjectRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			if rec.ID == "" {
				rec.ID = strings.TrimPrefix(key, projectPrefix)
			}

			projects = append(projects, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*storage.ProjectRecord, error) {
	const op = "storage.docstore.GetProject"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec storage.ProjectRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(projectKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: id=%s: %w", op, id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}

	return &rec, nil
}

// PutProject stores a raw project document under its id.
func (s *Store) PutProject(ctx context.Context, rec storage.ProjectRecord) error {
	const op = "storage.docstore.PutProject"

	if rec.ID == "" {
		return fmt.Errorf("%s: project id is required", op)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: marshal project %s: %w", op, rec.ID, err)
	}

	return s.PutRawProject(ctx, rec.ID, data)
}

// PutRawProject stores a document exactly as given, for imports that must
// keep the original date encodings.
func (s *Store) PutRawProject(ctx context.Context, id string, doc []byte) error {
	const op = "storage.docstore.PutRawProject"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(projectKey(id), doc)
	})
	if err != nil {
		return fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	return nil
}
