// Package store persists photo records in an embedded Badger database.
//
// Records live under the "photo:" prefix with secondary index keys for
// owner, content fingerprint, and upload time. All writes that touch a
// record and its index keys happen inside a single transaction.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
// Index updates are performed asynchronously to not block store operations.
type SearchIndexer interface {
	IndexPhoto(ctx context.Context, photo *domain.Photo) error
	DeletePhoto(ctx context.Context, photoID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexPhoto is a no-op.
func (NoopSearchIndexer) IndexPhoto(context.Context, *domain.Photo) error { return nil }

// DeletePhoto is a no-op.
func (NoopSearchIndexer) DeletePhoto(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	path   string
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// recovered is true when the database was rebuilt from scratch because
	// the previous files were unopenable.
	recovered bool
}

// Open opens the photo store at path, migrating or recovering as needed.
//
// If the database files are structurally unopenable, the directory is
// removed and a fresh store is created at the current schema version. That
// recovery is destructive and logged loudly; it is attempted exactly once.
// If the store still cannot be opened, ErrUnavailable is returned and
// nothing can proceed. A held directory lock is ordinary contention, not
// corruption: it returns ErrUnavailable without touching the files.
//
// An older on-disk schema is migrated additively (missing index keys are
// backfilled, the version is bumped). A newer schema opens as-is; versions
// only add indexes, so older code can still read the records.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := openBadger(path)
	if err != nil {
		if isDirectoryLocked(err) {
			if logger != nil {
				logger.Error("photo store is in use by another process", "path", path, "error", err)
			}
			return nil, ErrUnavailable.WithMessage("photo store is in use by another process").WithCause(err)
		}

		if logger != nil {
			logger.Error("photo store unopenable, rebuilding from scratch; stored photos are lost",
				"path", path, "error", err)
		}

		if rmErr := os.RemoveAll(path); rmErr != nil {
			return nil, ErrUnavailable.WithCause(errors.Join(err, rmErr))
		}

		db, err = openBadger(path)
		if err != nil {
			return nil, ErrUnavailable.WithCause(err)
		}

		store := &Store{db: db, path: path, logger: logger, recovered: true}
		if err := store.writeSchemaVersion(currentSchemaVersion); err != nil {
			_ = db.Close()
			return nil, ErrUnavailable.WithCause(err)
		}
		if logger != nil {
			logger.Warn("photo store recovered as empty", "path", path, "schema_version", currentSchemaVersion)
		}
		return store, nil
	}

	store := &Store{db: db, path: path, logger: logger}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("photo store opened", "path", path, "schema_version", currentSchemaVersion)
	}

	return store, nil
}

// isDirectoryLocked reports whether err is Badger's directory-lock failure,
// raised when another process has the same database open. The files
// underneath are intact, so this must never trigger destructive recovery.
// Badger exposes no sentinel for it; the message is the stable marker.
func isDirectoryLocked(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Another process is using this Badger database")
}

func openBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return db, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing photo store")
	}
	return s.db.Close()
}

// Recovered reports whether opening this store required a destructive rebuild.
func (s *Store) Recovered() bool {
	return s.recovered
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
