package store

import (
	"fmt"
	"time"
)

// formatTimestampIndexKey creates a sortable timestamp index key.
// Nanoseconds are zero-padded to a fixed width so lexicographic ordering
// matches chronological ordering.
// Format: {prefix}{YYYY-MM-DDTHH:MM:SS.NNNNNNNNNZ}:{photoID}.
// Example: photo:idx:uploaded_at:2026-08-28T10:30:00.123456789Z:photo-abc.
func formatTimestampIndexKey(prefix string, timestamp time.Time, photoID string) []byte {
	timestampStr := timestamp.UTC().Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", timestamp.Nanosecond()) + "Z"
	return fmt.Appendf(nil, "%s%s:%s", prefix, timestampStr, photoID)
}
