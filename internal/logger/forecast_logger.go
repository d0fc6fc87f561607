// Package logger provides forecast-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ForecastLogger provides dedicated logging for forward predictions.
type ForecastLogger struct {
	*logrus.Entry
}

// NewForecastLogger creates a new forecast logger.
func NewForecastLogger(baseLogger *logrus.Logger) *ForecastLogger {
	return &ForecastLogger{
		Entry: baseLogger.WithField("component", "forecast"),
	}
}

// LogPredictionBatch logs a batch of forward predictions.
func (fl *ForecastLogger) LogPredictionBatch(grouping, strategy string, from time.Time, days, topN int, duration time.Duration) {
	fl.WithFields(logrus.Fields{
		"grouping":    grouping,
		"strategy":    strategy,
		"from":        from.Format("2006-01-02"),
		"days":        days,
		"top_n":       topN,
		"duration_ms": duration.Milliseconds(),
	}).Info("Forward predictions generated")
}

// LogCacheStats logs ranked-candidate cache effectiveness.
func (fl *ForecastLogger) LogCacheStats(hits, misses uint64, items int) {
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	fl.WithFields(logrus.Fields{
		"cache_hits":      hits,
		"cache_misses":    misses,
		"cache_items":     items,
		"cache_hit_ratio": ratio,
	}).Debug("Forecast cache statistics")
}

// LogExport logs a written forecast file.
func (fl *ForecastLogger) LogExport(kind, path string, rows int) {
	fl.WithFields(logrus.Fields{
		"kind": kind,
		"path": path,
		"rows": rows,
	}).Info("Forecast export written")
}
