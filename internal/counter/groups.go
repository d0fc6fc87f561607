package counter

import (
	"sort"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// Groups owns an overall counter plus one counter per grouping key
// (weekday, month, month-day, ...).
type Groups struct {
	Overall *Counter
	groups  map[string]*Counter
}

// NewGroups creates an empty collection
func NewGroups() *Groups {
	return &Groups{
		Overall: New(),
		groups:  make(map[string]*Counter),
	}
}

// Fold adds t to the overall counter and to the counter of every key
func (g *Groups) Fold(keys []string, t models.Triplet) {
	g.Overall.Observe(t)
	for _, key := range keys {
		c, ok := g.groups[key]
		if !ok {
			c = New()
			g.groups[key] = c
		}
		c.Observe(t)
	}
}

// Lookup returns the counter for key, if any value was folded under it
func (g *Groups) Lookup(key string) (*Counter, bool) {
	c, ok := g.groups[key]
	return c, ok
}

// Total returns the number of values folded under key
func (g *Groups) Total(key string) int {
	if c, ok := g.groups[key]; ok {
		return c.Total()
	}
	return 0
}

// Keys returns the known grouping keys in sorted order
func (g *Groups) Keys() []string {
	keys := make([]string, 0, len(g.groups))
	for k := range g.groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of grouping keys
func (g *Groups) Len() int {
	return len(g.groups)
}

// Snapshot returns a deep copy of the collection
func (g *Groups) Snapshot() *Groups {
	out := &Groups{
		Overall: g.Overall.Clone(),
		groups:  make(map[string]*Counter, len(g.groups)),
	}
	for k, c := range g.groups {
		out.groups[k] = c.Clone()
	}
	return out
}

// Equal reports whether both collections hold identical statistics
func (g *Groups) Equal(other *Groups) bool {
	if g == nil || other == nil {
		return g == other
	}
	if *g.Overall != *other.Overall || len(g.groups) != len(other.groups) {
		return false
	}
	for k, c := range g.groups {
		oc, ok := other.groups[k]
		if !ok || *c != *oc {
			return false
		}
	}
	return true
}
