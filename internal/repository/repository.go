package repository

import (
	"fmt"

	"github.com/yourusername/triplet-forecast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Observation ObservationRepository
	BacktestRun BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Observation: NewPostgresObservationRepository(db),
		BacktestRun: NewPostgresBacktestRunRepository(db),
	}, nil
}
