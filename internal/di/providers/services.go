package providers

import (
	"github.com/samber/do/v2"

	"github.com/photokeepapp/photokeep-server/internal/config"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/logger"
	"github.com/photokeepapp/photokeep-server/internal/media/images"
	"github.com/photokeepapp/photokeep-server/internal/service"
	"github.com/photokeepapp/photokeep-server/internal/telemetry"
	"github.com/photokeepapp/photokeep-server/internal/validation"
)

// ProvideTelemetryClient provides the activity relay client.
func ProvideTelemetryClient(i do.Injector) (*telemetry.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := telemetry.NewClient(cfg.Telemetry, log.Logger)
	if client.Enabled() {
		log.Info("Telemetry relay enabled", "endpoint", cfg.Telemetry.Endpoint)
	} else {
		log.Info("Telemetry relay disabled")
	}

	return client, nil
}

// ProvideTranscoder provides the thumbnail transcoder.
func ProvideTranscoder(i do.Injector) (*images.Transcoder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewTranscoder(cfg.Thumbnail, log.Logger), nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	galleryCache := do.MustInvoke[*gallery.Cache](i)
	relay := do.MustInvoke[*telemetry.Client](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, galleryCache, relay, validator, log.Logger), nil
}

// ProvideUploadService provides the upload service.
func ProvideUploadService(i do.Injector) (*service.UploadService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	galleryCache := do.MustInvoke[*gallery.Cache](i)
	relay := do.MustInvoke[*telemetry.Client](i)
	transcoder := do.MustInvoke[*images.Transcoder](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUploadService(storeHandle.Store, galleryCache, relay, transcoder, log.Logger), nil
}

// ProvidePhotoService provides the photo service.
func ProvidePhotoService(i do.Injector) (*service.PhotoService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	galleryCache := do.MustInvoke[*gallery.Cache](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPhotoService(storeHandle.Store, galleryCache, searchHandle.PhotoIndex, log.Logger), nil
}
