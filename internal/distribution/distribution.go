package distribution

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// Entry pairs a triplet with its probability
type Entry struct {
	Triplet     models.Triplet `json:"triplet"`
	Probability float64        `json:"probability"`
}

// Distribution is a probability for every one of the 1000 triplets
type Distribution struct {
	probs      [models.NumTriplets]float64
	sumSquares float64
}

// Prob returns the probability of t
func (d *Distribution) Prob(t models.Triplet) float64 {
	if !t.Valid() {
		return 0
	}
	return d.probs[t]
}

// SumOfSquares returns the sum of squared probabilities, used by the Brier score
func (d *Distribution) SumOfSquares() float64 {
	return d.sumSquares
}

// Sum returns the total probability mass
func (d *Distribution) Sum() float64 {
	return floats.Sum(d.probs[:])
}

// Brier returns the multi-class Brier score against a one-hot truth
func (d *Distribution) Brier(truth models.Triplet) float64 {
	return d.sumSquares - 2*d.Prob(truth) + 1
}

// Rank returns the 1-based position of t when triplets are ordered by
// descending probability with ties broken by ascending triplet.
func (d *Distribution) Rank(t models.Triplet) int {
	if !t.Valid() {
		return models.NumTriplets
	}
	p := d.probs[t]
	rank := 1
	for u, q := range d.probs {
		if q > p || (q == p && u < int(t)) {
			rank++
		}
	}
	return rank
}

// InTopK reports whether t is among the k most probable triplets
func (d *Distribution) InTopK(t models.Triplet, k int) bool {
	return d.Rank(t) <= k
}

// Sorted returns all entries by descending probability, ties ascending triplet
func (d *Distribution) Sorted() []Entry {
	entries := make([]Entry, models.NumTriplets)
	for t := range d.probs {
		entries[t] = Entry{Triplet: models.Triplet(t), Probability: d.probs[t]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Probability > entries[j].Probability
	})
	return entries
}

// Top returns the n most probable entries
func (d *Distribution) Top(n int) []Entry {
	sorted := d.Sorted()
	if n < 0 {
		n = 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
