package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/triplet-forecast/internal/database"
	"github.com/yourusername/triplet-forecast/internal/models"
)

const insertDrawQuery = `
	INSERT INTO draws (draw_date, seq, value)
	VALUES ($1, $2, $3)
	ON CONFLICT (draw_date, seq) DO NOTHING
`

// PostgresObservationRepository implements ObservationRepository for PostgreSQL
type PostgresObservationRepository struct {
	db *database.DB
}

// NewPostgresObservationRepository creates a new observation repository
func NewPostgresObservationRepository(db *database.DB) ObservationRepository {
	return &PostgresObservationRepository{db: db}
}

// drawRow is one row of the draws table
type drawRow struct {
	date  time.Time
	seq   int
	value string
}

// toDrawRows numbers observations sharing a date in input order
func toDrawRows(observations []models.Observation) ([]drawRow, error) {
	if err := models.ValidateObservations(observations); err != nil {
		return nil, err
	}
	seen := make(map[time.Time]int, len(observations))
	rows := make([]drawRow, 0, len(observations))
	for _, o := range observations {
		day := models.Day(o.Date)
		key := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		rows = append(rows, drawRow{date: key, seq: seen[key], value: o.Value.String()})
		seen[key]++
	}
	return rows, nil
}

// InsertBatch inserts observations with a single pgx batch; existing
// (date, seq) rows are left untouched.
func (r *PostgresObservationRepository) InsertBatch(ctx context.Context, observations []models.Observation) (int, error) {
	if len(observations) == 0 {
		return 0, nil
	}
	rows, err := toDrawRows(observations)
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertDrawQuery, row.date, row.seq, row.value)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert draw %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return inserted, fmt.Errorf("failed to close draw batch: %w", err)
	}
	return inserted, nil
}

// GetAll retrieves the full history in draw order
func (r *PostgresObservationRepository) GetAll(ctx context.Context) ([]models.Observation, error) {
	query := `SELECT draw_date, value FROM draws ORDER BY draw_date ASC, seq ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	return scanObservations(rows)
}

// GetByDateRange retrieves draws with start <= date <= end
func (r *PostgresObservationRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Observation, error) {
	query := `
		SELECT draw_date, value FROM draws
		WHERE draw_date >= $1 AND draw_date <= $2
		ORDER BY draw_date ASC, seq ASC
	`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws by date range: %w", err)
	}
	return scanObservations(rows)
}

// Count returns the number of stored draws
func (r *PostgresObservationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM draws`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count draws: %w", err)
	}
	return count, nil
}

// GetLatest returns the most recent draw
func (r *PostgresObservationRepository) GetLatest(ctx context.Context) (*models.Observation, error) {
	query := `SELECT draw_date, value FROM draws ORDER BY draw_date DESC, seq DESC LIMIT 1`

	var (
		date time.Time
		raw  string
	)
	err := r.db.QueryRow(ctx, query).Scan(&date, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest draw: %w", err)
	}
	obs, err := models.NewObservation(date, raw)
	if err != nil {
		return nil, fmt.Errorf("stored draw on %s: %w", date.Format("2006-01-02"), err)
	}
	return &obs, nil
}

func scanObservations(rows pgx.Rows) ([]models.Observation, error) {
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var (
			date time.Time
			raw  string
		)
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		obs, err := models.NewObservation(date, raw)
		if err != nil {
			return nil, fmt.Errorf("stored draw on %s: %w", date.Format("2006-01-02"), err)
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}
