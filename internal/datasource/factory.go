package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/repository"
)

// Factory creates Source implementations based on configuration
type Factory struct {
	config *config.DataConfig
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.DataConfig, logger *logrus.Logger) *Factory {
	return &Factory{config: cfg, logger: logger}
}

// Create returns the configured source. repo is only needed for postgres.
func (f *Factory) Create(repo repository.ObservationRepository) (Source, error) {
	switch f.config.Source {
	case CSVSourceType:
		if f.config.CSVPath == "" {
			return nil, fmt.Errorf("csv source requires a path")
		}
		return NewCSVSource(f.config.CSVPath), nil

	case HTTPSourceType:
		if f.config.URL == "" {
			return nil, fmt.Errorf("http source requires a url")
		}
		client := NewRateLimitedHTTPClient(HTTPClientConfigFrom(f.config.HTTP), f.logger)
		return NewHTTPSource(f.config.URL, client), nil

	case PostgresSourceType:
		if repo == nil {
			return nil, fmt.Errorf("postgres source requires an observation repository")
		}
		return NewPostgresSource(repo), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", f.config.Source)
	}
}
