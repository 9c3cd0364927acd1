// Package di provides dependency injection configuration for the PhotoKeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/photokeepapp/photokeep-server/internal/config"
	"github.com/photokeepapp/photokeep-server/internal/di/providers"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/logger"
	"github.com/photokeepapp/photokeep-server/internal/media/images"
	"github.com/photokeepapp/photokeep-server/internal/service"
	"github.com/photokeepapp/photokeep-server/internal/telemetry"
	"github.com/photokeepapp/photokeep-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideGalleryCache)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Media and outbound relays
	do.Provide(injector, providers.ProvideTranscoder)
	do.Provide(injector, providers.ProvideTelemetryClient)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideUploadService)
	do.Provide(injector, providers.ProvidePhotoService)

	// Startup state
	do.Provide(injector, providers.ProvideBootstrap)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*gallery.Cache](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*images.Transcoder](injector)
	_ = do.MustInvoke[*telemetry.Client](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.UploadService](injector)
	_ = do.MustInvoke[*service.PhotoService](injector)

	// Restore persisted state before the server starts taking requests.
	_ = do.MustInvoke[*providers.Bootstrap](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Catch the index up with anything written while it was unavailable
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
