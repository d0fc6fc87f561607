package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/triplet-forecast/internal/models"
	"github.com/yourusername/triplet-forecast/internal/repository"
)

// Export is the JSON document written for one run
type Export struct {
	RunID       uuid.UUID          `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Params      ExportParams       `json:"params"`
	Summary     Summary            `json:"summary"`
	Curve       PerformanceCurve   `json:"curve,omitempty"`
	WalkForward *WalkForwardResult `json:"walk_forward,omitempty"`
	MonteCarlo  *MonteCarloResult  `json:"monte_carlo,omitempty"`
	Steps       []Step             `json:"steps"`
}

// ExportParams records the settings a run was produced with
type ExportParams struct {
	MinTrain             int     `json:"min_train"`
	AlphaTriplet         float64 `json:"alpha_triplet"`
	AlphaPos             float64 `json:"alpha_pos"`
	Mix                  float64 `json:"mix"`
	TopKs                []int   `json:"top_ks"`
	MinGroupObservations int     `json:"min_group_observations"`
}

// NewExport assembles an export document from a result
func NewExport(result *Result) Export {
	cfg := result.Config
	return Export{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Params: ExportParams{
			MinTrain:             cfg.MinTrain,
			AlphaTriplet:         cfg.Params.AlphaTriplet,
			AlphaPos:             cfg.Params.AlphaPos,
			Mix:                  cfg.Params.Mix,
			TopKs:                append([]int(nil), cfg.TopKs...),
			MinGroupObservations: cfg.MinGroupObservations,
		},
		Summary: result.Summary,
		Steps:   result.Steps,
	}
}

// ExportToJSON writes export data to JSON file
func ExportToJSON(export Export, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// ToRun converts an export into its persisted form
func ToRun(export Export) (*models.BacktestRun, error) {
	rates, err := json.Marshal(export.Summary.HitRates)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal hit rates: %w", err)
	}
	full, err := json.Marshal(struct {
		Summary     Summary            `json:"summary"`
		WalkForward *WalkForwardResult `json:"walk_forward,omitempty"`
		MonteCarlo  *MonteCarloResult  `json:"monte_carlo,omitempty"`
	}{export.Summary, export.WalkForward, export.MonteCarlo})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return &models.BacktestRun{
		ID:           export.RunID,
		Grouping:     export.Summary.Grouping,
		StartDate:    export.Summary.StartDate,
		EndDate:      export.Summary.EndDate,
		MinTrain:     export.Params.MinTrain,
		AlphaTriplet: export.Params.AlphaTriplet,
		AlphaPos:     export.Params.AlphaPos,
		Mix:          export.Params.Mix,
		TotalTests:   export.Summary.TotalTests,
		MRR:          export.Summary.MRR,
		MeanBrier:    export.Summary.MeanBrier,
		TopKRates:    rates,
		FullResults:  full,
		CreatedAt:    export.GeneratedAt,
	}, nil
}

// ExportToDatabase persists a run summary
func ExportToDatabase(ctx context.Context, export Export, repo repository.BacktestRunRepository) error {
	if repo == nil {
		return fmt.Errorf("backtest run repository is required")
	}
	run, err := ToRun(export)
	if err != nil {
		return err
	}
	return repo.SaveRun(ctx, run)
}
