// Package gallery maintains the in-memory view projection of the active
// owner's photos.
//
// The cache is rebuilt wholesale from the store; it is never patched
// incrementally, so a refresh after any mutation converges the view no
// matter what the previous state was.
package gallery

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/photokeepapp/photokeep-server/internal/dedup"
	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/store"
)

// Cache is the per-owner gallery projection.
type Cache struct {
	store  *store.Store
	logger *slog.Logger

	mu     sync.RWMutex
	owner  string
	photos []*domain.Photo
}

// NewCache creates a gallery cache backed by the given store.
func NewCache(s *store.Store, logger *slog.Logger) *Cache {
	return &Cache{store: s, logger: logger}
}

// SetOwner switches the active owner and clears the projection. Callers
// refresh afterwards to load the new owner's photos.
func (c *Cache) SetOwner(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = email
	c.photos = nil
}

// Owner returns the active owner email, empty when logged out.
func (c *Cache) Owner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// Refresh rebuilds the projection from the store.
//
// Only the active owner's photos enter the view. Records sharing a
// fingerprint are collapsed to the first occurrence in store order, and
// the surplus records are deleted from the store in the background: the
// store heals itself instead of carrying duplicates forward. With no
// active owner the projection is empty.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.RLock()
	owner := c.owner
	c.mu.RUnlock()

	if owner == "" {
		c.mu.Lock()
		c.photos = nil
		c.mu.Unlock()
		return nil
	}

	owned, err := c.store.PhotosByOwner(ctx, owner)
	if err != nil {
		return err
	}

	surplus := dedup.FindStoredDuplicates(owned)
	if len(surplus) > 0 {
		if c.logger != nil {
			c.logger.Warn("duplicate photos found in store, scheduling cleanup",
				"owner", owner, "count", len(surplus))
		}

		surplusSet := make(map[string]bool, len(surplus))
		for _, id := range surplus {
			surplusSet[id] = true
		}

		deduped := owned[:0]
		for _, photo := range owned {
			if !surplusSet[photo.ID] {
				deduped = append(deduped, photo)
			}
		}
		owned = deduped

		go c.deleteSurplus(surplus)
	}

	c.mu.Lock()
	c.photos = owned
	c.mu.Unlock()
	return nil
}

// deleteSurplus removes duplicate records without blocking the refresh
// that found them. Failures are logged and left for the next sweep.
func (c *Cache) deleteSurplus(ids []string) {
	failures := c.store.DeletePhotos(context.Background(), ids)
	if len(failures) > 0 && c.logger != nil {
		for id, err := range failures {
			c.logger.Error("failed to delete duplicate photo", "id", id, "error", err)
		}
	}
}

// Photos returns a copy of the current projection.
func (c *Cache) Photos() []*domain.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Photo, len(c.photos))
	copy(out, c.photos)
	return out
}

// Count returns the number of photos in the projection.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}

// Filter returns the photos matching both filters.
//
// query matches case-insensitively as a substring of the name or original
// name. tagQuery is comma-separated; a photo matches when ANY term is a
// case-insensitive substring of ANY of its tags. An empty filter matches
// everything.
func (c *Cache) Filter(query, tagQuery string) []*domain.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query = strings.TrimSpace(query)
	terms := tagTerms(tagQuery)

	var out []*domain.Photo
	for _, photo := range c.photos {
		if query != "" && !photo.MatchesName(query) {
			continue
		}
		if len(terms) > 0 && !matchesAnyTag(photo, terms) {
			continue
		}
		out = append(out, photo)
	}
	return out
}

// Stats summarizes the projection: total photos and how many were
// uploaded today.
func (c *Cache) Stats(now time.Time) domain.GalleryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := domain.GalleryStats{TotalPhotos: len(c.photos)}
	for _, photo := range c.photos {
		if photo.UploadedToday(now) {
			stats.TodayUploads++
		}
	}
	return stats
}

func tagTerms(tagQuery string) []string {
	if strings.TrimSpace(tagQuery) == "" {
		return nil
	}
	parts := strings.Split(tagQuery, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		term := strings.TrimSpace(part)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func matchesAnyTag(photo *domain.Photo, terms []string) bool {
	for _, term := range terms {
		if photo.HasTag(term) {
			return true
		}
	}
	return false
}
