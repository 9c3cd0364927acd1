package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/search"
	"github.com/photokeepapp/photokeep-server/internal/store"
)

// PhotoService serves gallery reads and photo deletion.
type PhotoService struct {
	store   *store.Store
	gallery *gallery.Cache
	search  *search.PhotoIndex
	logger  *slog.Logger
}

// NewPhotoService creates a photo service.
func NewPhotoService(
	s *store.Store,
	g *gallery.Cache,
	idx *search.PhotoIndex,
	logger *slog.Logger,
) *PhotoService {
	return &PhotoService{
		store:   s,
		gallery: g,
		search:  idx,
		logger:  logger,
	}
}

// List returns the active owner's photos matching the given filters, from
// the gallery projection. Empty filters return the whole projection.
func (s *PhotoService) List(ctx context.Context, query, tagQuery string) ([]*domain.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gallery.Filter(query, tagQuery), nil
}

// Search runs a full-text query against the search index, partitioned to
// the active owner.
func (s *PhotoService) Search(ctx context.Context, query string) (*search.Result, error) {
	params := search.DefaultParams()
	params.Query = query
	params.OwnerEmail = s.gallery.Owner()
	return s.search.Search(ctx, params)
}

// Get returns a photo's full record, payload included.
// Returns a NOT_FOUND domain error when the photo does not exist.
func (s *PhotoService) Get(ctx context.Context, photoID string) (*domain.Photo, error) {
	photo, err := s.store.GetPhoto(ctx, photoID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("photo %s not found", photoID)
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// Delete removes a photo and refreshes the gallery projection.
// Idempotent like the store delete underneath it.
func (s *PhotoService) Delete(ctx context.Context, photoID string) error {
	if err := s.store.DeletePhoto(ctx, photoID); err != nil {
		return err
	}
	return s.gallery.Refresh(ctx)
}

// DeleteMany deletes the given photos one at a time. Every ID gets its own
// attempt; the returned map holds the failures keyed by ID, empty when all
// succeeded. The projection is refreshed afterwards either way.
func (s *PhotoService) DeleteMany(ctx context.Context, photoIDs []string) (map[string]error, error) {
	failures := s.store.DeletePhotos(ctx, photoIDs)

	if err := s.gallery.Refresh(ctx); err != nil {
		return failures, err
	}

	if len(failures) > 0 {
		s.logger.Warn("bulk delete finished with failures",
			"requested", len(photoIDs),
			"failed", len(failures),
		)
	}
	return failures, nil
}

// Stats summarizes the active owner's gallery.
func (s *PhotoService) Stats(ctx context.Context) (domain.GalleryStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.GalleryStats{}, err
	}
	return s.gallery.Stats(time.Now()), nil
}

// Reindex rebuilds the search index from the store. Called at startup so
// the index catches up with anything written while it was unavailable.
func (s *PhotoService) Reindex(ctx context.Context) error {
	photos, err := s.store.AllPhotos(ctx)
	if err != nil {
		return err
	}

	if err := s.search.IndexPhotos(photos); err != nil {
		return err
	}

	s.logger.Info("search index synchronized", "photos", len(photos))
	return nil
}
