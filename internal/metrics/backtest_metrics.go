// Package metrics defines backtesting-specific metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by grouping and status",
	}, []string{"grouping", "status"})
	BacktestEvidenceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_evidence_total",
		Help:      "Evaluated steps by grouping and the evidence level they fell back to",
	}, []string{"grouping", "level"})
)

// Backtest gauge vectors
var (
	BacktestTests = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_tests",
		Help:      "Number of evaluated steps in the latest run per grouping",
	}, []string{"grouping"})
	BacktestHitRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_hit_rate",
		Help:      "Top-K hit rate of the latest run per grouping",
	}, []string{"grouping", "k"})
	BacktestMRR = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_mrr",
		Help:      "Mean reciprocal rank of the latest run per grouping",
	}, []string{"grouping"})
	BacktestMeanBrier = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_mean_brier",
		Help:      "Mean multi-class Brier score of the latest run per grouping",
	}, []string{"grouping"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "insufficient_data", "failure"
func RecordBacktestRun(grouping, status string) {
	BacktestRunsTotal.WithLabelValues(grouping, status).Inc()
}

// UpdateBacktestSummary publishes the headline metrics of a finished run.
func UpdateBacktestSummary(grouping string, tests int, hitRates map[int]float64, mrr, meanBrier float64) {
	BacktestTests.WithLabelValues(grouping).Set(float64(tests))
	for k, rate := range hitRates {
		BacktestHitRate.WithLabelValues(grouping, strconv.Itoa(k)).Set(rate)
	}
	BacktestMRR.WithLabelValues(grouping).Set(mrr)
	BacktestMeanBrier.WithLabelValues(grouping).Set(meanBrier)
}

// RecordEvidenceLevels adds per-level step counts for a run.
func RecordEvidenceLevels(grouping string, counts map[string]int) {
	for level, n := range counts {
		BacktestEvidenceTotal.WithLabelValues(grouping, level).Add(float64(n))
	}
}
