package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Grouping     string          `db:"grouping_name" json:"grouping"`
	StartDate    time.Time       `db:"start_date" json:"start_date"`
	EndDate      time.Time       `db:"end_date" json:"end_date"`
	MinTrain     int             `db:"min_train" json:"min_train"`
	AlphaTriplet float64         `db:"alpha_triplet" json:"alpha_triplet"`
	AlphaPos     float64         `db:"alpha_pos" json:"alpha_pos"`
	Mix          float64         `db:"mix" json:"mix"`
	TotalTests   int             `db:"total_tests" json:"total_tests"`
	MRR          float64         `db:"mrr" json:"mrr"`
	MeanBrier    float64         `db:"mean_brier" json:"mean_brier"`
	TopKRates    json.RawMessage `db:"top_k_rates" json:"top_k_rates"`
	FullResults  json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
