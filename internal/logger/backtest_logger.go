// Package logger provides backtest-specific logging.
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start of a backtest run.
func (bl *BacktestLogger) LogRunStarted(grouping string, observations, minTrain, workers int) {
	bl.WithFields(logrus.Fields{
		"grouping":     grouping,
		"observations": observations,
		"min_train":    minTrain,
		"workers":      workers,
	}).Info("Backtest run started")
}

// LogRunCompleted logs the headline metrics of a finished run.
func (bl *BacktestLogger) LogRunCompleted(grouping string, tests int, hitRates map[int]float64, mrr, meanBrier float64, duration time.Duration) {
	fields := logrus.Fields{
		"grouping":    grouping,
		"tests":       tests,
		"mrr":         mrr,
		"mean_brier":  meanBrier,
		"duration_ms": duration.Milliseconds(),
	}
	for k, rate := range hitRates {
		fields[topKField(k)] = rate
	}
	bl.WithFields(fields).Info("Backtest run completed")
}

// LogInsufficientData logs a run skipped for lack of observations.
func (bl *BacktestLogger) LogInsufficientData(grouping string, observations, minTrain int) {
	bl.WithFields(logrus.Fields{
		"grouping":     grouping,
		"observations": observations,
		"min_train":    minTrain,
	}).Warn("Not enough observations to backtest")
}

// LogReportWritten logs an exported report.
func (bl *BacktestLogger) LogReportWritten(grouping, format, path string) {
	bl.WithFields(logrus.Fields{
		"grouping": grouping,
		"format":   format,
		"path":     path,
	}).Info("Backtest report written")
}

// LogRunFailed logs a run that ended with an error.
func (bl *BacktestLogger) LogRunFailed(grouping string, err error) {
	bl.WithFields(logrus.Fields{
		"grouping": grouping,
		"error":    err.Error(),
	}).Error("Backtest run failed")
}

func topKField(k int) string {
	return fmt.Sprintf("top_%d_rate", k)
}
