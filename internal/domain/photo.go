package domain

import (
	"strings"
	"time"
)

// FingerprintMode records how a photo's content fingerprint was derived.
type FingerprintMode string

const (
	// FingerprintModeDigest is a SHA-256 digest of the photo bytes.
	FingerprintModeDigest FingerprintMode = "digest"
	// FingerprintModeFallback is a name|size|modified composite used when
	// the bytes could not be digested. Strictly weaker than a digest.
	FingerprintModeFallback FingerprintMode = "fallback"
)

// Photo represents a stored photo record. The payload is kept inline in the
// record, so a photo is a single self-contained document.
type Photo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name,omitempty"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	Payload      []byte `json:"payload,omitempty"`

	// Fingerprint identifies the photo's content. Unique across the store;
	// Mode tells whether it is a real digest or a metadata fallback.
	Fingerprint     string          `json:"fingerprint"`
	FingerprintMode FingerprintMode `json:"fingerprint_mode"`

	Tags       []string  `json:"tags,omitempty"`
	OwnerEmail string    `json:"owner_email"`
	UploadedAt time.Time `json:"uploaded_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`

	// BlurHash is a compact placeholder for gallery rendering.
	BlurHash string `json:"blurhash,omitempty"`
	// Thumbnail is a small JPEG used for gallery tiles and telemetry.
	Thumbnail []byte `json:"thumbnail,omitempty"`
}

// DisplayName returns the name shown in the gallery, falling back to the
// original upload name when the record name is empty.
func (p *Photo) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.OriginalName
}

// UploadedToday reports whether the photo was uploaded on the same calendar
// day as now, in now's location.
func (p *Photo) UploadedToday(now time.Time) bool {
	y1, m1, d1 := p.UploadedAt.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// HasTag reports whether any of the photo's tags contains the given
// substring, case-insensitively. Used by the gallery tag filter.
func (p *Photo) HasTag(query string) bool {
	for _, tag := range p.Tags {
		if containsFold(tag, query) {
			return true
		}
	}
	return false
}

// MatchesName reports whether the photo's name or original name contains
// the given substring, case-insensitively.
func (p *Photo) MatchesName(query string) bool {
	return containsFold(p.Name, query) || containsFold(p.OriginalName, query)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
