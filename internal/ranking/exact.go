package ranking

import (
	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/distribution"
)

// ExactRanker ranks by the full mixed distribution
type ExactRanker struct {
	Params distribution.Params
}

// Name returns the strategy name
func (r *ExactRanker) Name() string {
	return StrategyExact
}

// Rank returns the topN most probable triplets under the blended model
func (r *ExactRanker) Rank(snap counter.Snapshot, topN int) []Candidate {
	dist := distribution.Build(snap, snap, r.Params)
	return RankDistribution(dist, snap, topN)
}

// RankDistribution slices the head of an already built distribution.
// Counts come from snap.
func RankDistribution(dist *distribution.Distribution, snap counter.Snapshot, topN int) []Candidate {
	entries := dist.Top(topN)
	out := make([]Candidate, len(entries))
	for i, e := range entries {
		out[i] = Candidate{Triplet: e.Triplet, Score: e.Probability, Count: snap.Count(e.Triplet)}
	}
	return out
}
