package backtest

import (
	"encoding/json"
	"sort"
)

// Recommendation values
const (
	RecommendationInformative = "INFORMATIVE"
	RecommendationWeak        = "WEAK"
	RecommendationNoSignal    = "NO_SIGNAL"
)

// GroupingScore ranks one grouping inside a comparison
type GroupingScore struct {
	Grouping       string  `json:"grouping"`
	Tests          int     `json:"tests"`
	MRR            float64 `json:"mrr"`
	MeanBrier      float64 `json:"mean_brier"`
	MRRLift        float64 `json:"mrr_lift"`
	BrierGain      float64 `json:"brier_gain"`
	Recommendation string  `json:"recommendation"`
}

// AggregatedResult compares runs over different groupings of the same data
type AggregatedResult struct {
	Scores []GroupingScore `json:"scores"`
	Best   string          `json:"best"`
}

// AggregateResults orders runs by MRR, ties broken by lower Brier then name
func AggregateResults(results ...*Result) AggregatedResult {
	scores := make([]GroupingScore, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		s := r.Summary
		score := GroupingScore{
			Grouping:  r.Grouping,
			Tests:     s.TotalTests,
			MRR:       s.MRR,
			MeanBrier: s.MeanBrier,
			BrierGain: s.Baseline.Brier - s.MeanBrier,
		}
		if s.Baseline.MRR > 0 {
			score.MRRLift = s.MRR / s.Baseline.MRR
		}
		score.Recommendation = GenerateRecommendation(s)
		scores = append(scores, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].MRR != scores[j].MRR {
			return scores[i].MRR > scores[j].MRR
		}
		if scores[i].MeanBrier != scores[j].MeanBrier {
			return scores[i].MeanBrier < scores[j].MeanBrier
		}
		return scores[i].Grouping < scores[j].Grouping
	})

	agg := AggregatedResult{Scores: scores}
	if len(scores) > 0 {
		agg.Best = scores[0].Grouping
	}
	return agg
}

// GenerateRecommendation labels a summary by how clearly it beats chance
func GenerateRecommendation(s Summary) string {
	if s.TotalTests == 0 {
		return RecommendationNoSignal
	}
	beats := 0
	for _, k := range s.TopKs {
		if s.BeatsBaseline(k) {
			beats++
		}
	}
	switch {
	case beats > 0 && s.MeanBrier < s.Baseline.Brier:
		return RecommendationInformative
	case s.MRR > s.Baseline.MRR:
		return RecommendationWeak
	default:
		return RecommendationNoSignal
	}
}

// JSON renders the comparison
func (a AggregatedResult) JSON() string {
	data, _ := json.Marshal(a)
	return string(data)
}
