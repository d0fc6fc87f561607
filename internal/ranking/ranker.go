// Package ranking extracts ordered top-N candidate triplets for presentation.
//
// Two strategies are available and they can disagree:
//
//   - exact sorts the full mixed distribution and slices the head. It is the
//     true top-N under the blended model.
//   - approximate reproduces the historical heuristic: it only scores
//     triplets that were seen at least once plus the Cartesian product of the
//     most frequent digits per position, using raw empirical frequencies. When
//     the blend favours triplet evidence that the positional head does not
//     cover (or the reverse) its ordering differs from exact.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/distribution"
	"github.com/yourusername/triplet-forecast/internal/models"
)

// Strategy names
const (
	StrategyExact       = "exact"
	StrategyApproximate = "approximate"
)

// DefaultTopKPerPosition is the digit head size used by the approximate strategy
const DefaultTopKPerPosition = 6

// ErrUnknownStrategy is returned by New for unsupported strategy names
var ErrUnknownStrategy = errors.New("unknown ranking strategy")

// Candidate is one ranked triplet
type Candidate struct {
	Triplet models.Triplet `json:"triplet"`
	Score   float64        `json:"score"`
	Count   int            `json:"count"`
}

// Ranker produces an ordered candidate list from counter statistics
type Ranker interface {
	Name() string
	Rank(snap counter.Snapshot, topN int) []Candidate
}

// New resolves a ranker by strategy name
func New(strategy string, params distribution.Params, topKPerPosition int) (Ranker, error) {
	switch strategy {
	case StrategyExact:
		if err := params.Validate(); err != nil {
			return nil, err
		}
		return &ExactRanker{Params: params}, nil
	case StrategyApproximate:
		if topKPerPosition < 1 || topKPerPosition > models.Digits {
			return nil, fmt.Errorf("top_k_per_position must be within [1,%d], got %d", models.Digits, topKPerPosition)
		}
		return &ApproximateRanker{TopKPerPosition: topKPerPosition}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// sortCandidates orders by descending score, ties by ascending triplet
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Triplet < cands[j].Triplet
	})
}

func truncate(cands []Candidate, topN int) []Candidate {
	if topN < 0 {
		topN = 0
	}
	if len(cands) > topN {
		return cands[:topN]
	}
	return cands
}
