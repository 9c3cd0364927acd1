package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"

	"github.com/photokeepapp/photokeep-server/internal/config"
	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"
)

// Transcoder produces gallery thumbnails from uploaded photo bytes.
//
// Every thumbnail is a JPEG, whatever the source format: decoders for
// JPEG, PNG, GIF and WebP are registered by this package.
type Transcoder struct {
	cfg    config.ThumbnailConfig
	logger *slog.Logger
}

// NewTranscoder creates a Transcoder with the given configuration.
func NewTranscoder(cfg config.ThumbnailConfig, logger *slog.Logger) *Transcoder {
	return &Transcoder{
		cfg:    cfg,
		logger: logger,
	}
}

// Thumbnail decodes photo bytes and re-encodes them as a JPEG that fits
// within the configured bounding box.
//
// When the first encode comes out larger than the configured byte ceiling,
// the photo is scaled once more to the smaller retry bound and re-encoded.
// That second result is returned regardless of size; the ceiling is a
// target, not a guarantee.
func (t *Transcoder) Thumbnail(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeTranscode, "decode image")
	}

	encoded, err := t.encodeWithin(img, t.cfg.MaxBound)
	if err != nil {
		return nil, err
	}

	if len(encoded) > t.cfg.MaxEncodedBytes {
		if t.logger != nil {
			t.logger.Debug("thumbnail over size ceiling, retrying smaller",
				"format", format,
				"encoded_bytes", len(encoded),
				"ceiling", t.cfg.MaxEncodedBytes,
			)
		}
		encoded, err = t.encodeWithin(img, t.cfg.RetryBound)
		if err != nil {
			return nil, err
		}
	}

	return encoded, nil
}

func (t *Transcoder) encodeWithin(img image.Image, bound int) ([]byte, error) {
	scaled := scaleToFit(img, bound)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: t.cfg.Quality}); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeTranscode, "encode thumbnail")
	}
	return buf.Bytes(), nil
}

// scaleToFit shrinks img so both edges fit within bound, preserving aspect
// ratio. Images already within the bound are returned as-is; nothing is
// ever scaled up.
// Uses simple nearest-neighbor sampling which is fast and sufficient for
// small gallery tiles.
func scaleToFit(img image.Image, bound int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= bound && srcHeight <= bound {
		return img
	}

	// Calculate target dimensions maintaining aspect ratio
	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = bound
		dstHeight = (srcHeight * bound) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = bound
		dstWidth = (srcWidth * bound) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
