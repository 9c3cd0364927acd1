// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email normalizes an email address for use as an owner key: trimmed,
// lowercased, NFC-composed so visually identical addresses compare equal.
func Email(raw string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(sanitizeString(raw))))
}

// Tags parses a comma-separated tag string into normalized tags.
// Each tag is trimmed and NFC-composed; empty entries are dropped.
// "beach, summer,,  2024 " -> ["beach", "summer", "2024"].
func Tags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := Tag(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// Tag normalizes a single tag: trimmed and NFC-composed. Case is preserved
// so the gallery can display tags as the user typed them.
func Tag(raw string) string {
	return norm.NFC.String(strings.TrimSpace(sanitizeString(raw)))
}

// FileName sanitizes a photo file name: null bytes dropped, surrounding
// whitespace trimmed, NFC-composed. Names from different platforms may
// arrive NFD-decomposed (macOS) and would otherwise never match.
func FileName(raw string) string {
	return norm.NFC.String(strings.TrimSpace(sanitizeString(raw)))
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
