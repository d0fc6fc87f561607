package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// MonteCarloConfig configures the uniform-guess simulation
type MonteCarloConfig struct {
	Iterations int
	Seed       int64
}

// MonteCarloResult compares a run against simulated uniform guessing
type MonteCarloResult struct {
	Iterations    int             `json:"iterations"`
	Tests         int             `json:"tests"`
	MeanMRR       float64         `json:"mean_mrr"`
	StdMRR        float64         `json:"std_mrr"`
	MRR95         float64         `json:"mrr_95"`
	PValueMRR     float64         `json:"p_value_mrr"`
	PValueHitRate map[int]float64 `json:"p_value_hit_rate"`
	Distribution  []float64       `json:"distribution,omitempty"`
}

// RunMonteCarlo draws uniform ranks for as many tests as the summary holds
// and reports how often chance does at least as well as the model.
func RunMonteCarlo(ctx context.Context, summary Summary, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if summary.TotalTests == 0 {
		return MonteCarloResult{}, fmt.Errorf("%w: no tests to simulate", ErrInsufficientData)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := summary.TotalTests
	mrrs := make([]float64, cfg.Iterations)
	atLeastMRR := 0
	atLeastHits := make(map[int]int, len(summary.TopKs))

	for i := 0; i < cfg.Iterations; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, fmt.Errorf("monte carlo interrupted: %w", err)
			}
		}
		rrSum := 0.0
		hits := make(map[int]int, len(summary.TopKs))
		for j := 0; j < n; j++ {
			rank := rng.Intn(models.NumTriplets) + 1
			rrSum += 1.0 / float64(rank)
			for _, k := range summary.TopKs {
				if rank <= k {
					hits[k]++
				}
			}
		}
		mrrs[i] = rrSum / float64(n)
		if mrrs[i] >= summary.MRR {
			atLeastMRR++
		}
		for _, k := range summary.TopKs {
			if hits[k] >= summary.Hits[k] {
				atLeastHits[k]++
			}
		}
	}

	mean, std := stat.MeanStdDev(mrrs, nil)
	sorted := append([]float64(nil), mrrs...)
	sort.Float64s(sorted)

	result := MonteCarloResult{
		Iterations:    cfg.Iterations,
		Tests:         n,
		MeanMRR:       mean,
		StdMRR:        std,
		MRR95:         stat.Quantile(0.95, stat.Empirical, sorted, nil),
		PValueMRR:     pValue(atLeastMRR, cfg.Iterations),
		PValueHitRate: make(map[int]float64, len(summary.TopKs)),
		Distribution:  mrrs,
	}
	for _, k := range summary.TopKs {
		result.PValueHitRate[k] = pValue(atLeastHits[k], cfg.Iterations)
	}
	return result, nil
}

// pValue uses the add-one estimate so a finite simulation never reports zero
func pValue(atLeast, iterations int) float64 {
	return float64(atLeast+1) / float64(iterations+1)
}
