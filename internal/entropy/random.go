// Package entropy provides the random source threaded through every system
// that needs chance: weighted quest selection, wariness coin-flips, countdown
// seeding. A Source is always explicitly seeded so a full game replay is
// deterministic; crypto/rand is used only to pick a seed when the caller
// does not care.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source is a seeded pseudo-random stream. Not safe for concurrent use —
// the engine is single-threaded and each simulation owns exactly one Source.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic source from the given seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomSource creates a source seeded from crypto/rand, for runs where
// replayability does not matter.
func NewRandomSource() *Source {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// A predictable game beats a crash.
		return NewSource(1)
	}
	return NewSource(int64(binary.LittleEndian.Uint64(buf[:])))
}

// Float returns a float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Intn returns an int in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Between returns an int in [lo, hi].
func (s *Source) Between(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Chance returns true with probability p (clamped to [0, 1]).
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// WeightedIndex picks an index with probability proportional to its weight.
// Zero and negative weights are never picked. Returns -1 when no weight is
// positive.
func (s *Source) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	// Floating point slop: fall back to the last positive weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}
