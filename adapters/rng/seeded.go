package rng

import (
	"hash/fnv"
	"math/rand"
)

// Seeded derives one deterministic rand stream per named operation, so the
// tree-sampling draws replay exactly for a given (name, seed) pair.
// Implements ports.RNG.
type Seeded struct{}

// NewSeeded creates a new seeded RNG adapter.
func NewSeeded() *Seeded {
	return &Seeded{}
}

// Stream returns a generator seeded from the operation name and base seed.
func (s *Seeded) Stream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	derived := seed ^ int64(h.Sum64())
	return rand.New(rand.NewSource(derived))
}
