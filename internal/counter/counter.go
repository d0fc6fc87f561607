// Package counter accumulates sufficient statistics over observed triplets.
package counter

import (
	"github.com/yourusername/triplet-forecast/internal/models"
)

// Counter holds per-position digit counts, per-triplet counts and the total
// number of folded values. It only grows.
type Counter struct {
	total     int
	positions [models.Positions][models.Digits]int
	triplets  [models.NumTriplets]int
}

// New creates an empty counter
func New() *Counter {
	return &Counter{}
}

// FoldIn adds times occurrences of t. Non-positive times is a no-op.
func (c *Counter) FoldIn(t models.Triplet, times int) {
	if times <= 0 {
		return
	}
	c.total += times
	for p := 0; p < models.Positions; p++ {
		c.positions[p][t.Digit(p)] += times
	}
	c.triplets[t] += times
}

// Observe folds a single occurrence of t
func (c *Counter) Observe(t models.Triplet) {
	c.FoldIn(t, 1)
}

// Total returns the number of folded values
func (c *Counter) Total() int {
	return c.total
}

// Snapshot returns a read-only copy of the current statistics
func (c *Counter) Snapshot() Snapshot {
	return Snapshot{
		total:     c.total,
		positions: c.positions,
		triplets:  c.triplets,
	}
}

// Clone returns an independent copy
func (c *Counter) Clone() *Counter {
	clone := *c
	return &clone
}

// Merge sums counters into a new counter; nil entries are skipped
func Merge(counters ...*Counter) *Counter {
	merged := New()
	for _, c := range counters {
		if c == nil {
			continue
		}
		merged.total += c.total
		for p := 0; p < models.Positions; p++ {
			for d := 0; d < models.Digits; d++ {
				merged.positions[p][d] += c.positions[p][d]
			}
		}
		for t := range c.triplets {
			merged.triplets[t] += c.triplets[t]
		}
	}
	return merged
}
