package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/yourusername/triplet-forecast/internal/models"
)

var (
	valueHeader = regexp.MustCompile(`num|number|value|draw|result`)
	placeholder = regexp.MustCompile(`(?i)^x{3}$`)
	shortDigits = regexp.MustCompile(`^[0-9]{1,3}$`)
)

// dateLayouts are tried in order
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseCSV reads a headed table with a date column and a value column.
// Blank and XXX values are skipped; one or two digit values are zero padded.
func ParseCSV(r io.Reader, sourceName string) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", sourceName, ErrEmptySource)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	dateCol, valueCol := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case dateCol < 0 && strings.Contains(name, "date"):
			dateCol = i
		case valueCol < 0 && valueHeader.MatchString(name):
			valueCol = i
		}
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("%s: %w: date", sourceName, ErrMissingColumn)
	}
	if valueCol < 0 {
		return nil, fmt.Errorf("%s: %w: value", sourceName, ErrMissingColumn)
	}

	batch := &Batch{}
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", row, err)
		}

		rawValue := field(record, valueCol)
		if rawValue == "" || placeholder.MatchString(rawValue) {
			batch.Skipped++
			continue
		}

		rawDate := field(record, dateCol)
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, &RowError{Source: sourceName, Row: row, Raw: rawDate, Err: err}
		}

		if shortDigits.MatchString(rawValue) {
			rawValue = strings.Repeat("0", models.Positions-len(rawValue)) + rawValue
		}
		obs, err := models.NewObservation(date, rawValue)
		if err != nil {
			return nil, &RowError{Source: sourceName, Row: row, Raw: rawValue, Err: err}
		}
		batch.Observations = append(batch.Observations, obs)
	}

	if len(batch.Observations) == 0 && batch.Skipped == 0 {
		return nil, fmt.Errorf("%s: %w", sourceName, ErrEmptySource)
	}
	return batch, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", models.ErrInvalidObservation, raw)
}
