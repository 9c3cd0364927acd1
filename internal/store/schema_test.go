package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// White-box tests for the schema state machine. They reach into the raw
// database to fabricate older on-disk layouts that the exported API can
// no longer produce.

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "schema-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "photos.db")
	s, err := Open(dbPath, nil)
	require.NoError(t, err)

	return s, dbPath
}

func schemaPhoto(id, fingerprint, owner string) *domain.Photo {
	return &domain.Photo{
		ID:              id,
		Name:            id + ".jpg",
		Fingerprint:     fingerprint,
		FingerprintMode: domain.FingerprintModeDigest,
		OwnerEmail:      owner,
		UploadedAt:      time.Now(),
	}
}

func TestOpen_FreshStoreStampedWithCurrentVersion(t *testing.T) {
	s, _ := openTempStore(t)
	defer s.Close()

	version, err := s.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
	assert.False(t, s.Recovered())
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	s, dbPath := openTempStore(t)

	ctx := context.Background()
	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p1", "fp1", "user@example.com")))
	require.NoError(t, s.Close())

	// Second and third opens must change nothing and lose nothing.
	for range 2 {
		s, err := Open(dbPath, nil)
		require.NoError(t, err)

		version, err := s.schemaVersion()
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, version)

		got, err := s.GetPhoto(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "fp1", got.Fingerprint)

		require.NoError(t, s.Close())
	}
}

func TestMigrate_BackfillsMissingIndexKeys(t *testing.T) {
	s, dbPath := openTempStore(t)

	ctx := context.Background()
	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p1", "fp1", "alice@example.com")))
	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p2", "fp2", "bob@example.com")))

	// Rewind the store to version 1: strip every index key and downgrade
	// the version stamp.
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(photoPrefix)
		it := txn.NewIterator(opts)

		var indexKeys [][]byte
		for it.Seek([]byte(photoPrefix)); it.ValidForPrefix([]byte(photoPrefix)); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.HasPrefix(string(key)[len(photoPrefix):], "idx:") {
				indexKeys = append(indexKeys, key)
			}
		}
		it.Close()

		for _, key := range indexKeys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(1)))
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: migration must restore the indexes without touching records.
	s2, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer s2.Close()

	version, err := s2.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	byFP, err := s2.GetPhotoByFingerprint(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, "p1", byFP.ID)

	byOwner, err := s2.PhotosByOwner(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "p2", byOwner[0].ID)

	photos, err := s2.AllPhotos(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}

func TestMigrate_NewerVersionOpensReadCompatible(t *testing.T) {
	s, dbPath := openTempStore(t)

	ctx := context.Background()
	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p1", "fp1", "user@example.com")))

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(schemaVersionKey), []byte(strconv.Itoa(currentSchemaVersion+1)))
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer s2.Close()

	// The stored version is preserved; no downgrade happens.
	version, err := s2.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion+1, version)

	got, err := s2.GetPhoto(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "fp1", got.Fingerprint)
}

func TestOpen_DestructiveRecovery(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "recover-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	// A regular file where the database directory should be makes the
	// store unopenable.
	dbPath := filepath.Join(tmpDir, "photos.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("not a database"), 0o644))

	s, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Recovered())

	// The recovered store is empty and fully usable.
	ctx := context.Background()
	photos, err := s.AllPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)

	version, err := s.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p1", "fp1", "user@example.com")))
}

func TestOpen_HeldLockFailsWithoutRecovery(t *testing.T) {
	s, dbPath := openTempStore(t)

	ctx := context.Background()
	require.NoError(t, s.CreatePhoto(ctx, schemaPhoto("p1", "fp1", "user@example.com")))

	// A second open while the first handle holds the directory lock is
	// ordinary contention, not corruption. It must fail cleanly and leave
	// the files alone.
	s2, err := Open(dbPath, nil)
	require.Error(t, err)
	require.Nil(t, s2)
	assert.ErrorIs(t, err, ErrUnavailable)

	// The first handle keeps working and its records survive.
	got, err := s.GetPhoto(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "fp1", got.Fingerprint)

	require.NoError(t, s.Close())

	// Once the lock is released, reopen succeeds with nothing lost and no
	// recovery recorded.
	s3, err := Open(dbPath, nil)
	require.NoError(t, err)
	defer s3.Close()

	assert.False(t, s3.Recovered())
	got, err = s3.GetPhoto(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "fp1", got.Fingerprint)
}
