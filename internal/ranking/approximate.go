package ranking

import (
	"sort"

	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/models"
)

// ApproximateRanker scores seen triplets and a positional head using raw
// empirical frequencies
type ApproximateRanker struct {
	TopKPerPosition int
}

// Name returns the strategy name
func (r *ApproximateRanker) Name() string {
	return StrategyApproximate
}

// Rank returns up to topN candidates. Each candidate keeps the larger of its
// triplet frequency and its positional product.
func (r *ApproximateRanker) Rank(snap counter.Snapshot, topN int) []Candidate {
	k := r.TopKPerPosition
	if k < 1 || k > models.Digits {
		k = DefaultTopKPerPosition
	}
	total := float64(snap.Total())
	scores := make(map[models.Triplet]float64)

	for _, t := range snap.Seen() {
		scores[t] = float64(snap.Count(t)) / total
	}

	freq := positionalFrequencies(snap)
	heads := [models.Positions][]int{}
	for p := 0; p < models.Positions; p++ {
		heads[p] = topDigits(freq[p], k)
	}
	for _, a := range heads[0] {
		for _, b := range heads[1] {
			for _, c := range heads[2] {
				t := models.TripletFromDigits(a, b, c)
				score := freq[0][a] * freq[1][b] * freq[2][c]
				if cur, ok := scores[t]; !ok || score > cur {
					scores[t] = score
				}
			}
		}
	}

	cands := make([]Candidate, 0, len(scores))
	for t, score := range scores {
		cands = append(cands, Candidate{Triplet: t, Score: score, Count: snap.Count(t)})
	}
	sortCandidates(cands)
	return truncate(cands, topN)
}

func positionalFrequencies(snap counter.Snapshot) [models.Positions][models.Digits]float64 {
	var freq [models.Positions][models.Digits]float64
	total := snap.Total()
	if total == 0 {
		return freq
	}
	for p := 0; p < models.Positions; p++ {
		for d := 0; d < models.Digits; d++ {
			freq[p][d] = float64(snap.PositionCount(p, d)) / float64(total)
		}
	}
	return freq
}

// topDigits returns the k most frequent digits, ties ascending
func topDigits(freq [models.Digits]float64, k int) []int {
	digits := make([]int, models.Digits)
	for d := range digits {
		digits[d] = d
	}
	sort.SliceStable(digits, func(i, j int) bool {
		return freq[digits[i]] > freq[digits[j]]
	})
	return digits[:k]
}
