package store

import (
	"encoding/json/v2"
	"errors"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

// Schema versions. Version 1 stored bare photo records; version 2 added the
// owner, fingerprint, and uploaded_at index keys. Migrations are additive
// only: they backfill missing keys and never rewrite or drop records.
const (
	currentSchemaVersion = 2

	schemaVersionKey = "schema:version"
)

// schemaVersion reads the persisted schema version. A fresh store without
// the key reports version 0.
func (s *Store) schemaVersion() (int, error) {
	var version int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(schemaVersionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, convErr := strconv.Atoi(string(val))
			if convErr != nil {
				return convErr
			}
			version = v
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, ErrIO.WithCause(err)
	}
	return version, nil
}

func (s *Store) writeSchemaVersion(version int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(version)))
	})
	if err != nil {
		return ErrIO.WithCause(err)
	}
	return nil
}

// migrate brings the on-disk schema up to currentSchemaVersion.
//
// A fresh store is stamped with the current version. An older store gets
// missing index keys backfilled, then the version bump. A newer store is
// left alone: later versions only add keys, so this code can still read
// every record it understands.
func (s *Store) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}

	switch {
	case version == currentSchemaVersion:
		return nil

	case version > currentSchemaVersion:
		if s.logger != nil {
			s.logger.Warn("photo store schema is newer than this build, opening read-compatible",
				"stored_version", version, "known_version", currentSchemaVersion)
		}
		return nil

	case version == 0:
		// Fresh store, nothing to backfill.
		return s.writeSchemaVersion(currentSchemaVersion)

	default:
		if s.logger != nil {
			s.logger.Info("migrating photo store schema",
				"from_version", version, "to_version", currentSchemaVersion)
		}
		if err := s.backfillPhotoIndexes(); err != nil {
			return err
		}
		return s.writeSchemaVersion(currentSchemaVersion)
	}
}

// backfillPhotoIndexes scans every photo record and writes any index key
// that is missing. Existing keys are left untouched, so the migration is
// safe to re-run after a partial failure.
func (s *Store) backfillPhotoIndexes() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(photoPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(photoPrefix)); it.ValidForPrefix([]byte(photoPrefix)); it.Next() {
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

			for _, idxKey := range photoIndexKeys(&photo) {
				_, err := txn.Get(idxKey)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
				if err := txn.Set(idxKey, []byte(photo.ID)); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return ErrIO.WithCause(err)
	}
	return nil
}
