package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

const (
	photoPrefix = "photo:"

	// Unique index: photo:idx:fingerprint:<fp> -> id
	photoFingerprintIdx = "fingerprint"
	// Non-unique index: photo:idx:owner:<email>:<id> -> id
	photoOwnerIdx = "owner"
	// Sortable timestamp index: photo:idx:uploaded_at:<ts>:<id> -> id
	photoUploadedAtPrefix = photoPrefix + "idx:" + "uploaded_at:"
)

// photoIndexKeys returns every secondary index key a photo record owns.
// Used by create, delete, and the schema backfill so the set never drifts.
func photoIndexKeys(photo *domain.Photo) [][]byte {
	keys := make([][]byte, 0, 3)
	keys = append(keys, []byte(photoPrefix+"idx:"+photoFingerprintIdx+":"+photo.Fingerprint))
	keys = append(keys, []byte(photoPrefix+"idx:"+photoOwnerIdx+":"+photo.OwnerEmail+":"+photo.ID))
	keys = append(keys, formatTimestampIndexKey(photoUploadedAtPrefix, photo.UploadedAt, photo.ID))
	return keys
}

// CreatePhoto persists a new photo record with its index keys.
//
// The ID and fingerprint collision checks run inside the same transaction
// as the writes, so they are the final authority: a caller-side duplicate
// check may have raced another save, and this one cannot.
// Returns ErrDuplicateID or ErrDuplicateFingerprint on collision.
func (s *Store) CreatePhoto(ctx context.Context, photo *domain.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if photo.ID == "" {
		return ErrInvalidInput.WithMessage("photo id is required")
	}
	if photo.Fingerprint == "" {
		return ErrInvalidInput.WithMessage("photo fingerprint is required")
	}

	data, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("marshal photo: %w", err)
	}

	key := []byte(photoPrefix + photo.ID)
	fpKey := []byte(photoPrefix + "idx:" + photoFingerprintIdx + ":" + photo.Fingerprint)

	err = s.db.Update(func(txn *badger.Txn) error {
		// Re-check the ID inside the transaction.
		_, err := txn.Get(key)
		if err == nil {
			return ErrDuplicateID
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return ErrIO.WithCause(err)
		}

		// Re-check the fingerprint inside the transaction.
		_, err = txn.Get(fpKey)
		if err == nil {
			return ErrDuplicateFingerprint
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return ErrIO.WithCause(err)
		}

		if err := txn.Set(key, data); err != nil {
			return ErrIO.WithCause(err)
		}

		for _, idxKey := range photoIndexKeys(photo) {
			if err := txn.Set(idxKey, []byte(photo.ID)); err != nil {
				return ErrIO.WithCause(err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "photo created",
			slog.String("id", photo.ID),
			slog.String("name", photo.Name),
			slog.String("owner", photo.OwnerEmail),
			slog.Int64("size", photo.Size),
		)
	}

	s.indexPhotoAsync(photo)
	return nil
}

// GetPhoto retrieves a photo by ID.
// Returns ErrNotFound if no record exists.
func (s *Store) GetPhoto(ctx context.Context, id string) (*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(photoPrefix, id)
	defer releaseKey(key)

	var photo domain.Photo
	err := s.get(key, &photo)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("photo not found")
	}
	if err != nil {
		return nil, ErrIO.WithCause(err)
	}
	return &photo, nil
}

// GetPhotoByFingerprint retrieves a photo by its content fingerprint.
// Returns ErrNotFound if no record has the fingerprint.
func (s *Store) GetPhotoByFingerprint(ctx context.Context, fingerprint string) (*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idxKey := buildIndexKey(photoPrefix, photoFingerprintIdx, fingerprint)
	defer releaseKey(idxKey)

	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idxKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("photo not found")
	}
	if err != nil {
		return nil, ErrIO.WithCause(err)
	}

	return s.GetPhoto(ctx, id)
}

// AllPhotos returns every stored photo, in store key order.
func (s *Store) AllPhotos(ctx context.Context) ([]*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var photos []*domain.Photo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(photoPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(photoPrefix)); it.ValidForPrefix([]byte(photoPrefix)); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// Skip index keys.
			key := string(it.Item().Key())
			if strings.HasPrefix(key[len(photoPrefix):], "idx:") {
				continue
			}

			var photo domain.Photo
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &photo)
			})
			if err != nil {
				return err
			}
			photos = append(photos, &photo)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ErrIO.WithCause(err)
	}
	return photos, nil
}

// PhotosByOwner returns every photo belonging to the given owner,
// resolved through the owner index.
func (s *Store) PhotosByOwner(ctx context.Context, ownerEmail string) ([]*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idxPrefix := []byte(photoPrefix + "idx:" + photoOwnerIdx + ":" + ownerEmail + ":")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = idxPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(idxPrefix); it.ValidForPrefix(idxPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ErrIO.WithCause(err)
	}

	photos := make([]*domain.Photo, 0, len(ids))
	for _, id := range ids {
		photo, err := s.GetPhoto(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Dangling index entry; the record is gone.
			continue
		}
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// DeletePhoto removes a photo and its index keys.
// Idempotent: deleting an absent photo succeeds without error.
func (s *Store) DeletePhoto(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(photoPrefix + id)

	var deleted bool
	err := s.db.Update(func(txn *badger.Txn) error {
		var photo domain.Photo
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Idempotent - no error if it doesn't exist.
			return nil
		}
		if err != nil {
			return ErrIO.WithCause(err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &photo)
		})
		if err != nil {
			return ErrIO.WithCause(err)
		}

		// The fingerprint entry may point at a different record when
		// duplicate rows predate the uniqueness rule. Only remove it when
		// it belongs to the record being deleted, or the keeper would lose
		// its index entry.
		fpKey := []byte(photoPrefix + "idx:" + photoFingerprintIdx + ":" + photo.Fingerprint)
		fpItem, err := txn.Get(fpKey)
		if err == nil {
			var indexedID string
			if err := fpItem.Value(func(val []byte) error {
				indexedID = string(val)
				return nil
			}); err != nil {
				return ErrIO.WithCause(err)
			}
			if indexedID == photo.ID {
				if err := txn.Delete(fpKey); err != nil {
					return ErrIO.WithCause(err)
				}
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return ErrIO.WithCause(err)
		}

		ownerKey := []byte(photoPrefix + "idx:" + photoOwnerIdx + ":" + photo.OwnerEmail + ":" + photo.ID)
		if err := txn.Delete(ownerKey); err != nil {
			return ErrIO.WithCause(err)
		}

		tsKey := formatTimestampIndexKey(photoUploadedAtPrefix, photo.UploadedAt, photo.ID)
		if err := txn.Delete(tsKey); err != nil {
			return ErrIO.WithCause(err)
		}

		if err := txn.Delete(key); err != nil {
			return ErrIO.WithCause(err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		if s.logger != nil {
			s.logger.Info("photo deleted", "id", id)
		}
		s.deindexPhotoAsync(id)
	}
	return nil
}

// DeletePhotos deletes the given photos one at a time, in order. A failure
// stops nothing and rolls back nothing: every ID gets its own attempt, and
// the failures come back keyed by ID.
func (s *Store) DeletePhotos(ctx context.Context, ids []string) map[string]error {
	failures := make(map[string]error)
	for _, id := range ids {
		if err := s.DeletePhoto(ctx, id); err != nil {
			failures[id] = err
		}
	}
	return failures
}

// CountPhotos returns the number of stored photo records.
func (s *Store) CountPhotos(ctx context.Context) (int, error) {
	photos, err := s.AllPhotos(ctx)
	if err != nil {
		return 0, err
	}
	return len(photos), nil
}

// indexPhotoAsync pushes a photo into the search index without blocking
// the store operation that triggered it.
func (s *Store) indexPhotoAsync(photo *domain.Photo) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexPhoto(context.Background(), photo); err != nil && s.logger != nil {
			s.logger.Warn("failed to index photo for search", "id", photo.ID, "error", err)
		}
	}()
}

func (s *Store) deindexPhotoAsync(id string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeletePhoto(context.Background(), id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove photo from search index", "id", id, "error", err)
		}
	}()
}
