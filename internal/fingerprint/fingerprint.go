// Package fingerprint derives content fingerprints for uploaded photos.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Mode records how a fingerprint was derived. Records keep it so weak
// fingerprints stay observable after the fact.
type Mode string

const (
	// ModeDigest is a SHA-256 digest of the photo's raw bytes.
	ModeDigest Mode = "digest"
	// ModeFallback is a metadata composite used when the bytes could not
	// be digested. It is strictly weaker: two different photos with the
	// same name, size, and modification time collide.
	ModeFallback Mode = "fallback"
)

// Compute returns the SHA-256 hex digest of data. When data is empty and a
// digest cannot represent the content, callers should use Fallback instead.
func Compute(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fallback returns a metadata composite fingerprint of the form
// "name|size|unixMillis". Used when hashing is unavailable so the upload
// still succeeds with degraded duplicate detection.
func Fallback(name string, size int64, modifiedAt time.Time) string {
	return fmt.Sprintf("%s|%d|%d", name, size, modifiedAt.UnixMilli())
}

// Derive computes the digest fingerprint for data, falling back to the
// metadata composite when data is empty. The returned Mode tells the caller
// which path was taken.
func Derive(data []byte, name string, size int64, modifiedAt time.Time) (string, Mode) {
	if len(data) == 0 {
		return Fallback(name, size, modifiedAt), ModeFallback
	}
	return Compute(data), ModeDigest
}
