// Package id generates collision-free record identifiers.
package id

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// randomLength is the NanoID segment length. 12 URL-safe characters give
// ~71 bits of entropy on top of the time and counter components.
const randomLength = 12

// counter increments per generated ID so two IDs minted in the same
// millisecond by the same process still differ even if the random
// segments were to collide.
var counter atomic.Uint64

// Generate creates a prefixed unique ID with three independent components:
// Format: prefix-<unix millis, base36>-<nanoid>-<counter, base36>
// (e.g., "photo-mf0q2xkb-V1StGXR8_Z5j-2a").
//
// NanoIDs are URL-friendly and use a larger alphabet than hex for better
// entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	random, err := gonanoid.New(randomLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	seq := strconv.FormatUint(counter.Add(1), 36)

	return prefix + "-" + ts + "-" + random + "-" + seq, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when you're certain the system entropy is available,
// or when failure should crash the program (e.g., during initialization).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
