package images

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder

	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"
)

// blurHashSize is the target size for BlurHash computation.
// BlurHash doesn't need high resolution - a small thumbnail produces nearly identical results.
// Using 64x64 reduces computation time from seconds to milliseconds.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash string from encoded image bytes.
// Uses 4x3 components for a good balance of size (~20-30 chars) and detail.
// The image is resized to a small thumbnail first for performance.
// Returns empty string and error on failure.
func ComputeBlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeTranscode, "decode image")
	}

	// Resize to small thumbnail for fast BlurHash computation.
	// BlurHash is a low-resolution placeholder, so we don't need the full image.
	thumbnail := scaleToFit(img, blurHashSize)

	// 4 horizontal, 3 vertical components - sweet spot for photo tiles
	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeTranscode, "encode blurhash")
	}

	return hash, nil
}
