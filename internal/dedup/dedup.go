// Package dedup decides whether a candidate photo duplicates a stored one.
//
// The decision logic is pure: it inspects records and returns a verdict,
// leaving rejection, prompting, and deletion to the callers.
package dedup

import (
	"time"

	"github.com/photokeepapp/photokeep-server/internal/domain"
)

// RecencyWindow is how close together two uploads of a same-name, same-size
// file must be for the pair to count as an accidental re-upload.
const RecencyWindow = time.Minute

// Action is the verdict on a candidate photo.
type Action int

const (
	// Accept means no stored photo conflicts with the candidate.
	Accept Action = iota
	// Reject means the candidate is a duplicate and must not be saved.
	Reject
	// AskUser means the match is ambiguous; the user decides.
	AskUser
)

// String returns the action name for logs.
func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case AskUser:
		return "ask_user"
	default:
		return "unknown"
	}
}

// Match names the rule that produced a non-Accept decision.
type Match string

const (
	// MatchFingerprint: identical content.
	MatchFingerprint Match = "fingerprint"
	// MatchNameSizeRecent: same name and size, uploaded within RecencyWindow.
	MatchNameSizeRecent Match = "name_size_recent"
	// MatchName: same name only.
	MatchName Match = "name"
)

// Decision is the outcome of checking a candidate against stored photos.
type Decision struct {
	Action Action
	Match  Match
	// Against is the stored photo that triggered the decision, nil on Accept.
	Against *domain.Photo
}

// Candidate describes an incoming photo before it has a record.
type Candidate struct {
	Name        string
	Size        int64
	Fingerprint string
	// UploadedAt is when the candidate is being saved, normally now.
	UploadedAt time.Time
}

// Check decides whether candidate duplicates any of the existing photos.
//
// Rules apply in strict priority order across the whole set:
//  1. Fingerprint equality is definitive: Reject.
//  2. Same name and size with an upload inside RecencyWindow is treated
//     as an accidental re-upload: Reject.
//  3. Same name alone is ambiguous (cameras reuse names like IMG_0001.jpg):
//     AskUser.
//
// A lower-priority rule never fires when a higher one matches anywhere,
// so a name-only match elsewhere cannot downgrade a fingerprint Reject
// into a prompt.
func Check(candidate Candidate, existing []*domain.Photo) Decision {
	var nameSizeRecent *domain.Photo
	var nameOnly *domain.Photo

	for _, photo := range existing {
		if photo.Fingerprint != "" && photo.Fingerprint == candidate.Fingerprint {
			return Decision{Action: Reject, Match: MatchFingerprint, Against: photo}
		}

		if photo.Name != candidate.Name {
			continue
		}

		if photo.Size == candidate.Size && withinRecency(candidate.UploadedAt, photo.UploadedAt) {
			if nameSizeRecent == nil {
				nameSizeRecent = photo
			}
			continue
		}

		if nameOnly == nil {
			nameOnly = photo
		}
	}

	if nameSizeRecent != nil {
		return Decision{Action: Reject, Match: MatchNameSizeRecent, Against: nameSizeRecent}
	}
	if nameOnly != nil {
		return Decision{Action: AskUser, Match: MatchName, Against: nameOnly}
	}
	return Decision{Action: Accept}
}

func withinRecency(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= RecencyWindow
}

// FindStoredDuplicates returns the IDs of surplus records that share a
// fingerprint with an earlier record in the slice. The first occurrence in
// store order is the keeper; everything after it is surplus. Records with
// an empty fingerprint are never considered duplicates of each other.
func FindStoredDuplicates(photos []*domain.Photo) []string {
	seen := make(map[string]bool, len(photos))
	var surplus []string

	for _, photo := range photos {
		if photo.Fingerprint == "" {
			continue
		}
		if seen[photo.Fingerprint] {
			surplus = append(surplus, photo.ID)
			continue
		}
		seen[photo.Fingerprint] = true
	}

	return surplus
}
