// Package metrics provides centralized Prometheus metrics registry for the forecasting engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "triplet_forecast"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ObservationsImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_imported_total",
		Help:      "Total number of observations written to the draws table",
	})
	ObservationsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_rejected_total",
		Help:      "Total number of source rows rejected as invalid observations",
	})
	ScheduledJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_jobs_total",
		Help:      "Total number of scheduled jobs by job and status",
	}, []string{"job", "status"})
)

// Gauge metrics
var (
	ObservationsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "observations_loaded",
		Help:      "Number of observations in the most recently loaded history",
	})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"grouping"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ObservationsImportedTotal)
		registry.MustRegister(ObservationsRejectedTotal)
		registry.MustRegister(ScheduledJobsTotal)
		registry.MustRegister(ObservationsLoaded)
		registry.MustRegister(BacktestDuration)

		// backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestTests)
		registry.MustRegister(BacktestHitRate)
		registry.MustRegister(BacktestMRR)
		registry.MustRegister(BacktestMeanBrier)
		registry.MustRegister(BacktestEvidenceTotal)

		// forecast metrics
		registry.MustRegister(ForecastPredictionsTotal)
		registry.MustRegister(ForecastCacheRequestsTotal)
		registry.MustRegister(ForecastCacheHitRatio)
		registry.MustRegister(RankingDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordObservationsImported records rows written by an import.
func RecordObservationsImported(count int) {
	ObservationsImportedTotal.Add(float64(count))
}

// RecordObservationsRejected records rows rejected by a data source.
func RecordObservationsRejected(count int) {
	ObservationsRejectedTotal.Add(float64(count))
}

// UpdateObservationsLoaded updates the loaded history size.
func UpdateObservationsLoaded(count int) {
	ObservationsLoaded.Set(float64(count))
}

// RecordScheduledJob records a scheduler job outcome.
func RecordScheduledJob(job string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ScheduledJobsTotal.WithLabelValues(job, status).Inc()
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(grouping string, durationSeconds float64) {
	BacktestDuration.WithLabelValues(grouping).Observe(durationSeconds)
}
