package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StepCSVHeader is the column layout of per-step exports
var StepCSVHeader = []string{"date", "trueNum", "p_true", "rank", "brier", "observationsUsed", "source"}

// GenerateConsoleReport formats a summary for terminal output
func GenerateConsoleReport(summary Summary) string {
	var builder strings.Builder
	title := "Backtest Report"
	if summary.Grouping != "" {
		title = fmt.Sprintf("Backtest Report (%s)", summary.Grouping)
	}
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", len(title)) + "\n")
	if summary.TotalTests > 0 {
		builder.WriteString(fmt.Sprintf("Period: %s to %s\n",
			summary.StartDate.Format("2006-01-02"), summary.EndDate.Format("2006-01-02")))
	}
	builder.WriteString(fmt.Sprintf("Warm-up: %d\n", summary.TrainSize))
	builder.WriteString(fmt.Sprintf("Tests: %d\n", summary.TotalTests))
	for _, k := range summary.TopKs {
		ci := summary.HitRateCI[k]
		builder.WriteString(fmt.Sprintf("Top-%d: %.2f%% [%.2f%%, %.2f%%] (uniform %.2f%%, lift %.2fx)\n",
			k,
			summary.HitRates[k]*100,
			ci.Lower*100,
			ci.Upper*100,
			summary.Baseline.HitRates[k]*100,
			summary.Lift(k),
		))
	}
	builder.WriteString(fmt.Sprintf("MRR: %.6f (uniform %.6f)\n", summary.MRR, summary.Baseline.MRR))
	builder.WriteString(fmt.Sprintf("Mean Brier: %.6f (uniform %.6f)\n", summary.MeanBrier, summary.Baseline.Brier))
	return builder.String()
}

// StepsCSVFileName returns the per-step export name for a grouping
func StepsCSVFileName(grouping string) string {
	return fmt.Sprintf("%s_backtest_results.csv", grouping)
}

// GenerateStepsCSV writes one row per evaluated step
func GenerateStepsCSV(steps []Step, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(StepCSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, step := range steps {
		record := []string{
			step.Date.Format("2006-01-02"),
			step.Truth.String(),
			strconv.FormatFloat(step.PTrue, 'g', -1, 64),
			strconv.Itoa(step.Rank),
			strconv.FormatFloat(step.Brier, 'g', -1, 64),
			strconv.Itoa(step.ObservationsUsed),
			step.Level,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return f.Close()
}

// GenerateSummaryCSV exports key metrics for spreadsheets
func GenerateSummaryCSV(summary Summary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("metric,value\n")
	b.WriteString(fmt.Sprintf("grouping,%s\n", summary.Grouping))
	b.WriteString(fmt.Sprintf("total_tests,%d\n", summary.TotalTests))
	for _, k := range summary.TopKs {
		b.WriteString(fmt.Sprintf("top_%d_rate,%.6f\n", k, summary.HitRates[k]))
	}
	b.WriteString(fmt.Sprintf("mrr,%.6f\n", summary.MRR))
	b.WriteString(fmt.Sprintf("mean_brier,%.6f\n", summary.MeanBrier))
	return os.WriteFile(outputPath, []byte(b.String()), 0o644)
}
