// Package metrics defines forecast-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Forecast metrics
var (
	ForecastPredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_predictions_total",
		Help:      "Total number of forward predictions by grouping and ranking strategy",
	}, []string{"grouping", "strategy"})
	ForecastCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_cache_requests_total",
		Help:      "Ranked-candidate cache lookups by result",
	}, []string{"result"})
	ForecastCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "forecast_cache_hit_ratio",
		Help:      "Hit ratio of the ranked-candidate cache",
	})
	RankingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ranking_duration_seconds",
		Help:      "Duration of candidate ranking in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"strategy"})
)

// RecordPredictions records generated forward predictions.
func RecordPredictions(grouping, strategy string, count int) {
	ForecastPredictionsTotal.WithLabelValues(grouping, strategy).Add(float64(count))
}

// RecordCacheLookup records one ranked-candidate cache lookup.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ForecastCacheRequestsTotal.WithLabelValues(result).Inc()
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	ForecastCacheHitRatio.Set(ratio)
}

// RecordRankingDuration records how long a ranking took.
func RecordRankingDuration(strategy string, durationSeconds float64) {
	RankingDuration.WithLabelValues(strategy).Observe(durationSeconds)
}
