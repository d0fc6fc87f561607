package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/triplet-forecast/internal/database"
	"github.com/yourusername/triplet-forecast/internal/models"
)

const (
	errScanBacktestRun = "failed to scan backtest run: %w"

	backtestRunColumns = `id, grouping_name, start_date, end_date, min_train, alpha_triplet, alpha_pos, mix,
		total_tests, mrr, mean_brier, top_k_rates, full_results, created_at`
)

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// SaveRun inserts a backtest run
func (r *PostgresBacktestRunRepository) SaveRun(ctx context.Context, run *models.BacktestRun) error {
	if run == nil {
		return fmt.Errorf("backtest run is required")
	}
	query := `
		INSERT INTO backtest_runs (` + backtestRunColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`

	_, err := r.db.Exec(ctx, query,
		run.ID, run.Grouping, run.StartDate, run.EndDate, run.MinTrain,
		run.AlphaTriplet, run.AlphaPos, run.Mix,
		run.TotalTests, run.MRR, run.MeanBrier, run.TopKRates, run.FullResults, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a single run
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs WHERE id = $1`

	run := &models.BacktestRun{}
	err := scanRun(r.db.QueryRow(ctx, query, id), run)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent runs across groupings
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest runs: %w", err)
	}
	return scanRuns(rows)
}

// GetByGrouping retrieves the most recent runs for one grouping
func (r *PostgresBacktestRunRepository) GetByGrouping(ctx context.Context, grouping string, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT ` + backtestRunColumns + ` FROM backtest_runs
		WHERE grouping_name = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, grouping, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs by grouping: %w", err)
	}
	return scanRuns(rows)
}

func scanRun(row pgx.Row, run *models.BacktestRun) error {
	return row.Scan(
		&run.ID, &run.Grouping, &run.StartDate, &run.EndDate, &run.MinTrain,
		&run.AlphaTriplet, &run.AlphaPos, &run.Mix,
		&run.TotalTests, &run.MRR, &run.MeanBrier, &run.TopKRates, &run.FullResults, &run.CreatedAt,
	)
}

func scanRuns(rows pgx.Rows) ([]*models.BacktestRun, error) {
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := scanRun(rows, run); err != nil {
			return nil, fmt.Errorf(errScanBacktestRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
