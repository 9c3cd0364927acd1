package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/logger"
	"github.com/photokeepapp/photokeep-server/internal/service"
)

// Bootstrap contains the startup state restored from the store.
type Bootstrap struct {
	Session *domain.Session
}

// ProvideBootstrap restores the persisted session so a restart doesn't log
// the owner out.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	session, err := sessionService.Restore(context.Background())
	if err != nil {
		return nil, err
	}

	if session == nil {
		log.Info("No persisted session - login required")
	}

	return &Bootstrap{Session: session}, nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index from the store.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	photoService := do.MustInvoke[*service.PhotoService](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	photos, err := storeHandle.AllPhotos(ctx)
	if err != nil || len(photos) == 0 {
		return
	}

	log.Info("Search index is empty but photos exist, triggering initial reindex",
		"photo_count", len(photos),
	)

	go func() {
		if err := photoService.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := searchHandle.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
