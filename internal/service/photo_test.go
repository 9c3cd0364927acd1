package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/search"
	"github.com/photokeepapp/photokeep-server/internal/store"
)

func setupPhotoService(t *testing.T) (*PhotoService, *gallery.Cache, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "photo-service-test-*")
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(tmpDir, "photos.db"), nil)
	require.NoError(t, err)

	idx, err := search.NewPhotoIndex(search.Options{
		DataPath: tmpDir,
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	s.SetSearchIndexer(idx)

	t.Cleanup(func() {
		_ = idx.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	g := gallery.NewCache(s, nil)
	return NewPhotoService(s, g, idx, testLogger()), g, s
}

func servicePhoto(id, name string, tags []string) *domain.Photo {
	return &domain.Photo{
		ID:          id,
		Name:        name,
		Fingerprint: "fp-" + id,
		OwnerEmail:  "alice@example.com",
		Tags:        tags,
		UploadedAt:  time.Now(),
		Payload:     []byte("payload-" + id),
		MimeType:    "image/jpeg",
	}
}

func TestPhotoService_GetAndDelete(t *testing.T) {
	svc, g, s := setupPhotoService(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p1", "beach.jpg", nil)))
	g.SetOwner("alice@example.com")
	require.NoError(t, g.Refresh(ctx))

	photo, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "beach.jpg", photo.Name)
	assert.Equal(t, []byte("payload-p1"), photo.Payload)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, "p1"))
	_, err = svc.Get(ctx, "p1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Zero(t, g.Count())

	// Idempotent.
	require.NoError(t, svc.Delete(ctx, "p1"))
}

func TestPhotoService_List(t *testing.T) {
	svc, g, s := setupPhotoService(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p1", "beach.jpg", []string{"summer"})))
	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p2", "mountain.jpg", []string{"winter"})))
	g.SetOwner("alice@example.com")
	require.NoError(t, g.Refresh(ctx))

	all, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matches, err := svc.List(ctx, "beach", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ID)

	matches, err = svc.List(ctx, "", "winter")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p2", matches[0].ID)
}

func TestPhotoService_DeleteMany(t *testing.T) {
	svc, g, s := setupPhotoService(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p1", "a.jpg", nil)))
	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p2", "b.jpg", nil)))
	g.SetOwner("alice@example.com")
	require.NoError(t, g.Refresh(ctx))

	// Deleting an absent ID is not a failure; the delete is idempotent.
	failures, err := svc.DeleteMany(ctx, []string{"p1", "missing", "p2"})
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Zero(t, g.Count())
}

func TestPhotoService_Stats(t *testing.T) {
	svc, g, s := setupPhotoService(t)
	ctx := context.Background()

	old := servicePhoto("p-old", "old.jpg", nil)
	old.UploadedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, s.CreatePhoto(ctx, old))
	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p-new", "new.jpg", nil)))

	g.SetOwner("alice@example.com")
	require.NoError(t, g.Refresh(ctx))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPhotos)
	assert.Equal(t, 1, stats.TodayUploads)
}

func TestPhotoService_Reindex_And_Search(t *testing.T) {
	svc, g, s := setupPhotoService(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p1", "beach sunset", nil)))
	require.NoError(t, s.CreatePhoto(ctx, servicePhoto("p2", "mountain hike", nil)))
	g.SetOwner("alice@example.com")
	require.NoError(t, g.Refresh(ctx))

	require.NoError(t, svc.Reindex(ctx))

	result, err := svc.Search(ctx, "beach")
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "p1", result.Hits[0].ID)
}
