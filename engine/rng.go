package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// RNG is the session's deterministic random source. Every draw advances a
// position counter so a saved session can be restored to the exact same
// sequence of dice rolls and encounter picks.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// NewSeed returns a high-entropy seed for a fresh session.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return int(r.next()%int64(sides)) + 1
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := int(r.next() % int64(total))
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// next draws exactly one value from the source so Position counts source
// draws and RestoreRNG can replay them.
func (r *RNG) next() int64 {
	r.pos++
	return r.src.Int63()
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}
