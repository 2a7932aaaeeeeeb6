package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic tree
// sampling. Tests request a fixed seed to make draws reproducible.
type RNG interface {
	// Stream creates a deterministic generator for a named operation, so
	// identical (name, seed) pairs replay identical draw sequences.
	Stream(name string, seed int64) *rand.Rand
}
