package backtest

import (
	"time"

	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/models"
)

// Step is the score of one evaluated observation
type Step struct {
	Index            int            `json:"index"`
	Date             time.Time      `json:"date"`
	Truth            models.Triplet `json:"true_value"`
	PTrue            float64        `json:"p_true"`
	Rank             int            `json:"rank"`
	Brier            float64        `json:"brier"`
	InTopK           []bool         `json:"in_top_k"`
	ObservationsUsed int            `json:"observations_used"`
	Level            string         `json:"evidence_level"`
	Key              string         `json:"evidence_key"`
}

// ReciprocalRank returns 1/rank
func (s Step) ReciprocalRank() float64 {
	if s.Rank <= 0 {
		return 0
	}
	return 1.0 / float64(s.Rank)
}

// Result is the outcome of one backtest run
type Result struct {
	Grouping string          `json:"grouping"`
	Config   Config          `json:"-"`
	Summary  Summary         `json:"summary"`
	Steps    []Step          `json:"steps"`
	State    *counter.Groups `json:"-"`
}

// job carries everything needed to score one step without touching shared state
type job struct {
	slot  int
	index int
	obs   models.Observation
	level string
	key   string
	snap  counter.Snapshot
}

// SelectEvidence picks the most specific counter with at least minObs
// observations, falling back to the overall counter.
func SelectEvidence(state *counter.Groups, keys []GroupKey, minObs int) (level, key string, snap counter.Snapshot) {
	for _, k := range keys {
		name := k.String()
		if c, ok := state.Lookup(name); ok && c.Total() >= minObs {
			return k.Level, name, c.Snapshot()
		}
	}
	return LevelOverall, LevelOverall, state.Overall.Snapshot()
}
