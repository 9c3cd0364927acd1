package domain

// GalleryStats summarizes the active owner's gallery.
type GalleryStats struct {
	TotalPhotos  int `json:"total_photos"`
	TodayUploads int `json:"today_uploads"`
}
