package datasource

import (
	"context"
	"fmt"
	"os"
)

// CSVSource loads observations from a local file
type CSVSource struct {
	path string
}

// NewCSVSource creates a file-backed source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name returns the source name
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Load reads and parses the file
func (s *CSVSource) Load(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	return ParseCSV(f, s.path)
}
