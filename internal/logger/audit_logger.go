// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for data changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogImport records observations loaded into the draws table.
func (al *AuditLogger) LogImport(source string, rows, inserted int, first, last time.Time) {
	al.WithFields(logrus.Fields{
		"source":     source,
		"rows":       rows,
		"inserted":   inserted,
		"first_date": first.Format("2006-01-02"),
		"last_date":  last.Format("2006-01-02"),
	}).Info("Observations imported")
}

// LogRunPersisted records a backtest run saved to the database.
func (al *AuditLogger) LogRunPersisted(runID, grouping string, tests int, mrr float64) {
	al.WithFields(logrus.Fields{
		"run_id":   runID,
		"grouping": grouping,
		"tests":    tests,
		"mrr":      mrr,
	}).Info("Backtest run persisted")
}

// LogScheduledRun records a run triggered by the scheduler.
func (al *AuditLogger) LogScheduledRun(jobName string, triggeredAt time.Time, success bool) {
	entry := al.WithFields(logrus.Fields{
		"job":          jobName,
		"triggered_at": triggeredAt.Unix(),
		"success":      success,
	})
	if success {
		entry.Info("Scheduled run finished")
		return
	}
	entry.Warn("Scheduled run failed")
}
