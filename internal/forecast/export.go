package forecast

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// File names written by WriteAll
const (
	PredictionsFileName = "predictions.csv"
	PositionalFileName  = "positional.csv"
	TripletsFileName    = "triplets.csv"
)

var (
	predictionsHeader = []string{"date", "source", "key", "observationsUsed", "topCandidates"}
	positionalHeader  = []string{"group", "digit", "count_pos0", "prob_pos0", "count_pos1", "prob_pos1", "count_pos2", "prob_pos2"}
	tripletsHeader    = []string{"group", "triplet", "count", "probability"}
)

// FileName prefixes name with the grouping, e.g. weekly_predictions.csv
func FileName(grouping, name string) string {
	return grouping + "_" + name
}

// WritePredictionsCSV writes one row per predicted date
func WritePredictionsCSV(predictions []Prediction, outputPath string) (int, error) {
	rows := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, []string{
			p.Date.Format("2006-01-02"),
			p.Source,
			p.Key,
			strconv.Itoa(p.ObservationsUsed),
			p.TopText(),
		})
	}
	return len(rows), writeCSV(outputPath, predictionsHeader, rows)
}

// WritePositionalCSV writes every positional table followed by its TOTAL row
func WritePositionalCSV(tables []PositionalTable, outputPath string) (int, error) {
	var rows [][]string
	for _, table := range tables {
		for _, r := range table.Rows {
			row := []string{table.Group, strconv.Itoa(r.Digit)}
			for p := range r.Counts {
				row = append(row, strconv.Itoa(r.Counts[p]), formatFloat(r.Probs[p]))
			}
			rows = append(rows, row)
		}
		rows = append(rows, []string{table.Group, "TOTAL", strconv.Itoa(table.Total), "", "", "", "", ""})
	}
	return len(rows), writeCSV(outputPath, positionalHeader, rows)
}

// WriteTripletsCSV writes every triplet table
func WriteTripletsCSV(tables []TripletTable, outputPath string) (int, error) {
	var rows [][]string
	for _, table := range tables {
		for _, r := range table.Rows {
			rows = append(rows, []string{table.Group, r.Triplet.String(), strconv.Itoa(r.Count), formatFloat(r.Probability)})
		}
	}
	return len(rows), writeCSV(outputPath, tripletsHeader, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(outputPath string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return f.Close()
}
