package backtest

import (
	"time"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// ConfidenceLevel is the coverage of the reported hit-rate intervals
const ConfidenceLevel = 0.95

// Interval is a two-sided confidence interval
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// Baseline is what a uniform guess over all triplets would score
type Baseline struct {
	HitRates map[int]float64 `json:"hit_rates"`
	MRR      float64         `json:"mrr"`
	Brier    float64         `json:"brier"`
}

// Summary represents backtest performance metrics
type Summary struct {
	Grouping   string           `json:"grouping"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	TrainSize  int              `json:"train_size"`
	TotalTests int              `json:"total_tests"`
	TopKs      []int            `json:"top_ks"`
	Hits       map[int]int      `json:"hits"`
	HitRates   map[int]float64  `json:"hit_rates"`
	HitRateCI  map[int]Interval `json:"hit_rate_ci"`
	MRR        float64          `json:"mrr"`
	MeanBrier  float64          `json:"mean_brier"`
	Baseline   Baseline         `json:"baseline"`
}

// Summarize reduces per-step scores to aggregate metrics
func Summarize(steps []Step, topKs []int) Summary {
	summary := Summary{
		TotalTests: len(steps),
		TopKs:      append([]int(nil), topKs...),
		Hits:       make(map[int]int, len(topKs)),
		HitRates:   make(map[int]float64, len(topKs)),
		HitRateCI:  make(map[int]Interval, len(topKs)),
		Baseline:   UniformBaseline(topKs),
	}
	for _, k := range topKs {
		summary.Hits[k] = 0
	}
	if len(steps) == 0 {
		return summary
	}

	summary.StartDate = steps[0].Date
	summary.EndDate = steps[len(steps)-1].Date

	var rrSum, brierSum float64
	for _, step := range steps {
		rrSum += step.ReciprocalRank()
		brierSum += step.Brier
		for i, k := range topKs {
			if i < len(step.InTopK) && step.InTopK[i] {
				summary.Hits[k]++
			}
		}
	}

	n := len(steps)
	summary.MRR = rrSum / float64(n)
	summary.MeanBrier = brierSum / float64(n)
	for _, k := range topKs {
		summary.HitRates[k] = float64(summary.Hits[k]) / float64(n)
		summary.HitRateCI[k] = ClopperPearson(summary.Hits[k], n, ConfidenceLevel)
	}
	return summary
}

// Lift returns the hit rate at k divided by the uniform baseline
func (s Summary) Lift(k int) float64 {
	base := s.Baseline.HitRates[k]
	if base == 0 {
		return 0
	}
	return s.HitRates[k] / base
}

// BeatsBaseline reports whether the uniform hit rate at k lies below the interval
func (s Summary) BeatsBaseline(k int) bool {
	ci, ok := s.HitRateCI[k]
	if !ok {
		return false
	}
	return ci.Lower > s.Baseline.HitRates[k]
}

// UniformBaseline returns the scores of the uniform distribution
func UniformBaseline(topKs []int) Baseline {
	b := Baseline{
		HitRates: make(map[int]float64, len(topKs)),
		MRR:      uniformMRR(),
		Brier:    1 - 1.0/float64(models.NumTriplets),
	}
	for _, k := range topKs {
		rate := float64(k) / float64(models.NumTriplets)
		if rate > 1 {
			rate = 1
		}
		b.HitRates[k] = rate
	}
	return b
}
