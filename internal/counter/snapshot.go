package counter

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// Snapshot is a value copy of a Counter. Copies of a Snapshot share nothing
// with the Counter they came from.
type Snapshot struct {
	total     int
	positions [models.Positions][models.Digits]int
	triplets  [models.NumTriplets]int
}

// Total returns the number of folded values
func (s Snapshot) Total() int {
	return s.total
}

// Count returns how many times t was observed
func (s Snapshot) Count(t models.Triplet) int {
	if !t.Valid() {
		return 0
	}
	return s.triplets[t]
}

// PositionCount returns how many values had digit d at position p
func (s Snapshot) PositionCount(p, d int) int {
	if p < 0 || p >= models.Positions || d < 0 || d >= models.Digits {
		return 0
	}
	return s.positions[p][d]
}

// Seen returns every triplet with a non-zero count, ascending
func (s Snapshot) Seen() []models.Triplet {
	out := make([]models.Triplet, 0)
	for t, n := range s.triplets {
		if n > 0 {
			out = append(out, models.Triplet(t))
		}
	}
	return out
}

// Counter rebuilds a mutable counter from the snapshot
func (s Snapshot) Counter() *Counter {
	return &Counter{total: s.total, positions: s.positions, triplets: s.triplets}
}

// Fingerprint hashes the triplet counts with FNV-1a. Positional counts and
// the total derive from them, so equal fingerprints mean equal snapshots
// up to hash collisions.
func (s Snapshot) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, n := range s.triplets {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
