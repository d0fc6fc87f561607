package backtest

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// ClopperPearson returns the exact binomial interval for hits successes out of n
func ClopperPearson(hits, n int, confidence float64) Interval {
	if n <= 0 {
		return Interval{Lower: 0, Upper: 1}
	}
	if hits < 0 {
		hits = 0
	}
	if hits > n {
		hits = n
	}
	alpha := 1 - confidence

	ci := Interval{Lower: 0, Upper: 1}
	if hits > 0 {
		b := distuv.Beta{Alpha: float64(hits), Beta: float64(n - hits + 1)}
		ci.Lower = b.Quantile(alpha / 2)
	}
	if hits < n {
		b := distuv.Beta{Alpha: float64(hits + 1), Beta: float64(n - hits)}
		ci.Upper = b.Quantile(1 - alpha/2)
	}
	return ci
}

// uniformMRR is the expected reciprocal rank when the truth is equally
// likely to sit at any of the 1000 ranks.
func uniformMRR() float64 {
	sum := 0.0
	for r := 1; r <= models.NumTriplets; r++ {
		sum += 1.0 / float64(r)
	}
	return sum / float64(models.NumTriplets)
}
