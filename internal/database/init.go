package database

import (
	"context"
	"fmt"

	"github.com/yourusername/triplet-forecast/internal/config"
)

// Schema creates the draws and backtest_runs tables when missing
const Schema = `
CREATE TABLE IF NOT EXISTS draws (
	draw_date  DATE        NOT NULL,
	seq        INTEGER     NOT NULL DEFAULT 0,
	value      CHAR(3)     NOT NULL CHECK (value ~ '^[0-9]{3}$'),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (draw_date, seq)
);

CREATE TABLE IF NOT EXISTS backtest_runs (
	id            UUID             PRIMARY KEY,
	grouping_name TEXT             NOT NULL,
	start_date    DATE             NOT NULL,
	end_date      DATE             NOT NULL,
	min_train     INTEGER          NOT NULL,
	alpha_triplet DOUBLE PRECISION NOT NULL,
	alpha_pos     DOUBLE PRECISION NOT NULL,
	mix           DOUBLE PRECISION NOT NULL,
	total_tests   INTEGER          NOT NULL,
	mrr           DOUBLE PRECISION NOT NULL,
	mean_brier    DOUBLE PRECISION NOT NULL,
	top_k_rates   JSONB            NOT NULL,
	full_results  JSONB,
	created_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_backtest_runs_grouping_created
	ON backtest_runs (grouping_name, created_at DESC);
`

// Initialize creates a database connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies Schema; every statement is idempotent
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
