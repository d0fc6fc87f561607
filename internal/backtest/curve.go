package backtest

import "time"

// CurvePoint is the running score after one step
type CurvePoint struct {
	Date    time.Time `json:"date"`
	Tests   int       `json:"tests"`
	MRR     float64   `json:"mrr"`
	HitRate float64   `json:"hit_rate"`
	Brier   float64   `json:"brier"`
}

// PerformanceCurve is the running score over the whole run
type PerformanceCurve []CurvePoint

// BuildCurve accumulates running MRR, mean Brier and the hit rate of the
// topK cut-off at position kIndex of the configured list.
func BuildCurve(steps []Step, kIndex int) PerformanceCurve {
	curve := make(PerformanceCurve, 0, len(steps))
	var rrSum, brierSum float64
	hits := 0
	for i, step := range steps {
		rrSum += step.ReciprocalRank()
		brierSum += step.Brier
		if kIndex >= 0 && kIndex < len(step.InTopK) && step.InTopK[kIndex] {
			hits++
		}
		n := float64(i + 1)
		curve = append(curve, CurvePoint{
			Date:    step.Date,
			Tests:   i + 1,
			MRR:     rrSum / n,
			HitRate: float64(hits) / n,
			Brier:   brierSum / n,
		})
	}
	return curve
}

// Final returns the last point, or a zero point for an empty curve
func (c PerformanceCurve) Final() CurvePoint {
	if len(c) == 0 {
		return CurvePoint{}
	}
	return c[len(c)-1]
}
