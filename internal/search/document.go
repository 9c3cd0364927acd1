// Package search provides full-text photo search using Bleve.
// It powers the gallery search box with fuzzy matching and prefix
// completion over photo names and tags.
package search

import (
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

// PhotoDocument is the Bleve document for a stored photo.
//
// Design note: both the display name and the original upload name are
// indexed, so a photo renamed after upload still turns up under the
// filename the camera gave it.
type PhotoDocument struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	OwnerEmail   string   `json:"owner_email"`
	MimeType     string   `json:"mime_type,omitempty"`

	// Unix millis, for sorting by recency.
	UploadedAt int64 `json:"uploaded_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *PhotoDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"name":        d.Name,
		"owner_email": d.OwnerEmail,
		"uploaded_at": d.UploadedAt,
	}

	if d.OriginalName != "" {
		m["original_name"] = d.OriginalName
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.MimeType != "" {
		m["mime_type"] = d.MimeType
	}

	return m
}

// PhotoToDocument converts a domain Photo to its search document.
func PhotoToDocument(photo *domain.Photo) *PhotoDocument {
	return &PhotoDocument{
		ID:           photo.ID,
		Name:         photo.Name,
		OriginalName: photo.OriginalName,
		Tags:         photo.Tags,
		OwnerEmail:   photo.OwnerEmail,
		MimeType:     photo.MimeType,
		UploadedAt:   photo.UploadedAt.UnixMilli(),
	}
}
