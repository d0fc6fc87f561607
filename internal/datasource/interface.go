package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// Source defines where observation history is loaded from
type Source interface {
	// Load returns the full history; order is not guaranteed
	Load(ctx context.Context) (*Batch, error)

	// Name returns the name of the data source
	Name() string
}

// Batch is the outcome of loading a source
type Batch struct {
	Observations []models.Observation
	// Skipped counts blank and placeholder rows
	Skipped int
}

// Source types
const (
	CSVSourceType      = "csv"
	PostgresSourceType = "postgres"
	HTTPSourceType     = "http"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptySource   = errors.New("source contains no rows")
)

// RowError reports an invalid row of a tabular source
type RowError struct {
	Source string
	Row    int
	Raw    string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: row %d (%q): %v", e.Source, e.Row, e.Raw, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
