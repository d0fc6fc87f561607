package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/datasource"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/models"
	"github.com/yourusername/triplet-forecast/internal/repository"
)

// Run status labels
const (
	StatusSuccess          = "success"
	StatusInsufficientData = "insufficient_data"
	StatusFailure          = "failure"
)

// BacktestOutcome collects every run of one invocation
type BacktestOutcome struct {
	Results   []*backtest.Result
	Exports   []backtest.Export
	Skipped   []string
	Aggregate backtest.AggregatedResult
}

// BacktestService loads history, runs the engine per grouping and
// publishes reports, metrics and persisted runs
type BacktestService struct {
	cfg    config.BacktestConfig
	source datasource.Source
	engine *backtest.Engine
	runs   repository.BacktestRunRepository
	log    *logger.BacktestLogger
	audit  *logger.AuditLogger
}

// NewBacktestService wires a service; runs may be nil when persistence is off
func NewBacktestService(cfg config.BacktestConfig, source datasource.Source, engine *backtest.Engine, runs repository.BacktestRunRepository, base *logrus.Logger) (*BacktestService, error) {
	if engine == nil {
		return nil, fmt.Errorf("backtest engine is required")
	}
	if cfg.PersistRuns && runs == nil {
		return nil, fmt.Errorf("persist_runs requires a backtest run repository")
	}
	if base == nil {
		base = engine.Logger()
	}
	return &BacktestService{
		cfg:    cfg,
		source: source,
		engine: engine,
		runs:   runs,
		log:    logger.NewBacktestLogger(base),
		audit:  logger.NewAuditLogger(base),
	}, nil
}

// Run loads the configured source and backtests every grouping
func (s *BacktestService) Run(ctx context.Context, groupings []string) (*BacktestOutcome, error) {
	if s.source == nil {
		return nil, fmt.Errorf("data source is required")
	}
	batch, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.source.Name(), err)
	}
	metrics.UpdateObservationsLoaded(len(batch.Observations))
	return s.RunObservations(ctx, batch.Observations, groupings)
}

// RunObservations backtests every grouping over the given history. A
// grouping without enough data is skipped; any other error stops the run.
func (s *BacktestService) RunObservations(ctx context.Context, observations []models.Observation, groupings []string) (*BacktestOutcome, error) {
	if len(groupings) == 0 {
		groupings = []string{backtest.GroupingConstant}
	}
	minTrain := s.engine.Config().MinTrain
	outcome := &BacktestOutcome{}

	for _, name := range groupings {
		grouping, err := backtest.GroupingByName(name)
		if err != nil {
			return nil, err
		}

		started := time.Now()
		result, err := s.engine.Run(ctx, observations, grouping)
		if errors.Is(err, backtest.ErrInsufficientData) {
			s.log.LogInsufficientData(grouping.Name(), len(observations), minTrain)
			metrics.RecordBacktestRun(grouping.Name(), StatusInsufficientData)
			outcome.Skipped = append(outcome.Skipped, grouping.Name())
			continue
		}
		if err != nil {
			s.log.LogRunFailed(grouping.Name(), err)
			metrics.RecordBacktestRun(grouping.Name(), StatusFailure)
			return nil, fmt.Errorf("backtest %s: %w", grouping.Name(), err)
		}
		metrics.RecordBacktestDuration(grouping.Name(), time.Since(started).Seconds())
		metrics.RecordBacktestRun(grouping.Name(), StatusSuccess)
		publishSummary(result)

		export, err := s.publish(ctx, result)
		if err != nil {
			s.log.LogRunFailed(grouping.Name(), err)
			return nil, err
		}
		outcome.Results = append(outcome.Results, result)
		outcome.Exports = append(outcome.Exports, export)
	}

	outcome.Aggregate = backtest.AggregateResults(outcome.Results...)
	return outcome, nil
}

func publishSummary(result *backtest.Result) {
	s := result.Summary
	metrics.UpdateBacktestSummary(result.Grouping, s.TotalTests, s.HitRates, s.MRR, s.MeanBrier)

	levels := make(map[string]int)
	for _, step := range result.Steps {
		levels[step.Level]++
	}
	metrics.RecordEvidenceLevels(result.Grouping, levels)
}

// publish builds the export document and writes every enabled output
func (s *BacktestService) publish(ctx context.Context, result *backtest.Result) (backtest.Export, error) {
	export := backtest.NewExport(result)
	export.Curve = backtest.BuildCurve(result.Steps, 0)

	if s.cfg.WalkForwardWindow > 0 {
		wf, err := backtest.RunWalkForward(result, backtest.WalkForwardConfig{WindowSize: s.cfg.WalkForwardWindow})
		if err != nil {
			return export, fmt.Errorf("walk-forward %s: %w", result.Grouping, err)
		}
		export.WalkForward = &wf
	}

	if s.cfg.MonteCarloIterations > 0 {
		mc, err := backtest.RunMonteCarlo(ctx, result.Summary, backtest.MonteCarloConfig{
			Iterations: s.cfg.MonteCarloIterations,
			Seed:       s.cfg.MonteCarloSeed,
		})
		if err != nil {
			return export, fmt.Errorf("monte carlo %s: %w", result.Grouping, err)
		}
		export.MonteCarlo = &mc
	}

	if s.cfg.WriteCSV {
		path := filepath.Join(s.cfg.OutputPath, backtest.StepsCSVFileName(result.Grouping))
		if err := backtest.GenerateStepsCSV(result.Steps, path); err != nil {
			return export, err
		}
		s.log.LogReportWritten(result.Grouping, "csv", path)

		summaryPath := filepath.Join(s.cfg.OutputPath, result.Grouping+"_summary.csv")
		if err := backtest.GenerateSummaryCSV(result.Summary, summaryPath); err != nil {
			return export, fmt.Errorf("failed to write summary csv: %w", err)
		}
		s.log.LogReportWritten(result.Grouping, "summary_csv", summaryPath)
	}

	if s.cfg.WriteJSON {
		path := filepath.Join(s.cfg.OutputPath, result.Grouping+"_backtest.json")
		if err := backtest.ExportToJSON(export, path); err != nil {
			return export, err
		}
		s.log.LogReportWritten(result.Grouping, "json", path)
	}

	if s.cfg.PersistRuns {
		if err := backtest.ExportToDatabase(ctx, export, s.runs); err != nil {
			return export, fmt.Errorf("failed to persist %s run: %w", result.Grouping, err)
		}
		s.audit.LogRunPersisted(export.RunID.String(), result.Grouping, result.Summary.TotalTests, result.Summary.MRR)
	}

	return export, nil
}
