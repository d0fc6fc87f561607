package datasource

import (
	"context"
	"fmt"

	"github.com/yourusername/triplet-forecast/internal/repository"
)

// PostgresSource loads observations from the draws table
type PostgresSource struct {
	repo repository.ObservationRepository
}

// NewPostgresSource creates a repository-backed source
func NewPostgresSource(repo repository.ObservationRepository) *PostgresSource {
	return &PostgresSource{repo: repo}
}

// Name returns the source name
func (s *PostgresSource) Name() string {
	return PostgresSourceType
}

// Load reads every stored draw
func (s *PostgresSource) Load(ctx context.Context) (*Batch, error) {
	observations, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load draws: %w", err)
	}
	return &Batch{Observations: observations}, nil
}
