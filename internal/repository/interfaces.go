package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/triplet-forecast/internal/models"
)

// ObservationRepository defines the interface for draw history access
type ObservationRepository interface {
	// InsertBatch stores observations and returns how many rows were new
	InsertBatch(ctx context.Context, observations []models.Observation) (int, error)
	GetAll(ctx context.Context) ([]models.Observation, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Observation, error)
	Count(ctx context.Context) (int, error)
	GetLatest(ctx context.Context) (*models.Observation, error)
}

// BacktestRunRepository defines backtest run persistence
type BacktestRunRepository interface {
	SaveRun(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
	GetByGrouping(ctx context.Context, grouping string, limit int) ([]*models.BacktestRun, error)
}
