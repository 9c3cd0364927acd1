package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"

	"github.com/photokeepapp/photokeep-server/internal/dedup"
	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/fingerprint"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/id"
	"github.com/photokeepapp/photokeep-server/internal/media/images"
	"github.com/photokeepapp/photokeep-server/internal/normalize"
	"github.com/photokeepapp/photokeep-server/internal/store"
	"github.com/photokeepapp/photokeep-server/internal/telemetry"
)

// UploadService runs the upload pipeline: fingerprint, duplicate check,
// thumbnail, persist, telemetry.
//
// Only one batch runs at a time. A second upload while the gate is held is
// rejected outright, never queued, so the caller can tell the user instead
// of silently stacking work.
type UploadService struct {
	store      *store.Store
	gallery    *gallery.Cache
	telemetry  *telemetry.Client
	transcoder *images.Transcoder
	logger     *slog.Logger

	uploading atomic.Bool
}

// NewUploadService creates an upload service.
func NewUploadService(
	s *store.Store,
	g *gallery.Cache,
	t *telemetry.Client,
	tr *images.Transcoder,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		store:      s,
		gallery:    g,
		telemetry:  t,
		transcoder: tr,
		logger:     logger,
	}
}

// UploadFile is one incoming file in a batch.
type UploadFile struct {
	Name       string
	MimeType   string
	Data       []byte
	ModifiedAt time.Time
}

// UploadSummary reports what happened to a batch.
type UploadSummary struct {
	Uploaded   int `json:"uploaded"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// Upload processes a batch of files strictly in order.
//
// tagText is comma-separated; the parsed tags apply to every file in the
// batch. confirmDuplicates stands in for the interactive prompt: a
// name-only match is saved anyway when true and counted as a duplicate
// when false. Returns ErrUploadInProgress when another batch holds the
// gate.
func (s *UploadService) Upload(ctx context.Context, files []UploadFile, tagText string, confirmDuplicates bool) (*UploadSummary, error) {
	if !s.uploading.CompareAndSwap(false, true) {
		return nil, domainerrors.UploadInProgress("an upload batch is already running")
	}
	defer s.uploading.Store(false)

	owner := s.gallery.Owner()
	if owner == "" {
		return nil, domainerrors.Validation("no active session")
	}

	tags := normalize.Tags(tagText)
	existing := s.gallery.Photos()
	summary := &UploadSummary{}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		photo, outcome := s.processFile(ctx, file, tags, owner, existing, confirmDuplicates)
		switch outcome {
		case outcomeUploaded:
			summary.Uploaded++
			// Later files in the batch dedupe against this one too.
			existing = append(existing, photo)
		case outcomeDuplicate:
			summary.Duplicates++
		case outcomeFailed:
			summary.Failed++
		}
	}

	if err := s.gallery.Refresh(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("upload batch finished",
		"owner", owner,
		"uploaded", summary.Uploaded,
		"duplicates", summary.Duplicates,
		"failed", summary.Failed,
	)

	return summary, nil
}

// Uploading reports whether a batch currently holds the gate.
func (s *UploadService) Uploading() bool {
	return s.uploading.Load()
}

type uploadOutcome int

const (
	outcomeUploaded uploadOutcome = iota
	outcomeDuplicate
	outcomeFailed
)

func (s *UploadService) processFile(
	ctx context.Context,
	file UploadFile,
	tags []string,
	owner string,
	existing []*domain.Photo,
	confirmDuplicates bool,
) (*domain.Photo, uploadOutcome) {
	name := normalize.FileName(file.Name)
	size := int64(len(file.Data))
	now := time.Now()

	fp, mode := fingerprint.Derive(file.Data, name, size, file.ModifiedAt)

	decision := dedup.Check(dedup.Candidate{
		Name:        name,
		Size:        size,
		Fingerprint: fp,
		UploadedAt:  now,
	}, existing)

	switch decision.Action {
	case dedup.Reject:
		s.logger.Info("duplicate upload rejected",
			"name", name,
			"match", string(decision.Match),
			"against", decision.Against.ID,
		)
		return nil, outcomeDuplicate
	case dedup.AskUser:
		if !confirmDuplicates {
			s.logger.Info("ambiguous upload skipped without confirmation",
				"name", name,
				"against", decision.Against.ID,
			)
			return nil, outcomeDuplicate
		}
	}

	photoID, err := id.Generate("photo")
	if err != nil {
		s.logger.Error("failed to generate photo id", "name", name, "error", err)
		return nil, outcomeFailed
	}

	photo := &domain.Photo{
		ID:              photoID,
		Name:            name,
		OriginalName:    file.Name,
		Size:            size,
		MimeType:        file.MimeType,
		Payload:         file.Data,
		Fingerprint:     fp,
		FingerprintMode: domain.FingerprintMode(mode),
		Tags:            tags,
		OwnerEmail:      owner,
		UploadedAt:      now,
		ModifiedAt:      file.ModifiedAt,
	}

	// Thumbnail and BlurHash are cosmetic; their failure never fails the
	// upload.
	if thumb, err := s.transcoder.Thumbnail(file.Data); err != nil {
		s.logger.Warn("thumbnail generation failed", "name", name, "error", err)
	} else {
		photo.Thumbnail = thumb
	}
	if hash, err := images.ComputeBlurHash(file.Data); err != nil {
		s.logger.Warn("blurhash computation failed", "name", name, "error", err)
	} else {
		photo.BlurHash = hash
	}

	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		// The in-transaction re-check is the final authority; a photo that
		// slipped past the pre-check still counts as a duplicate here.
		if errors.Is(err, store.ErrDuplicateFingerprint) || errors.Is(err, store.ErrDuplicateID) {
			s.logger.Info("duplicate caught at store level", "name", name, "error", err)
			return nil, outcomeDuplicate
		}
		s.logger.Error("failed to store photo", "name", name, "error", err)
		return nil, outcomeFailed
	}

	s.telemetry.RecordPhotoUploadAsync(photo, thumbnailDataURL(photo.Thumbnail))

	return photo, outcomeUploaded
}

// thumbnailDataURL renders the thumbnail as an inline data URL for the
// telemetry sheet, empty when there is no thumbnail.
func thumbnailDataURL(thumb []byte) string {
	if len(thumb) == 0 {
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb)
}
