package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/datasource"
	"github.com/yourusername/triplet-forecast/internal/distribution"
	"github.com/yourusername/triplet-forecast/internal/forecast"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/models"
	"github.com/yourusername/triplet-forecast/internal/ranking"
)

// ForecastOutcome is the result of one forward prediction
type ForecastOutcome struct {
	Grouping    string
	Predictions []forecast.Prediction
	Tables      forecast.Tables
}

// ForecastService trains on the full history and predicts future dates
type ForecastService struct {
	forecastCfg config.ForecastConfig
	engineCfg   config.EngineConfig
	source      datasource.Source
	ranker      ranking.Ranker
	cache       *forecast.CandidateCache
	log         *logger.ForecastLogger
}

// NewForecastService resolves the configured ranking strategy
func NewForecastService(forecastCfg config.ForecastConfig, engineCfg config.EngineConfig, source datasource.Source, base *logrus.Logger) (*ForecastService, error) {
	params := distribution.Params{
		AlphaTriplet: engineCfg.AlphaTriplet,
		AlphaPos:     engineCfg.AlphaPos,
		Mix:          engineCfg.Mix,
	}
	ranker, err := ranking.New(engineCfg.Ranking, params, engineCfg.TopKPerPosition)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = logrus.New()
	}
	ttl := time.Duration(forecastCfg.CacheTTLSeconds) * time.Second
	cleanup := time.Duration(forecastCfg.CacheCleanupSeconds) * time.Second
	return &ForecastService{
		forecastCfg: forecastCfg,
		engineCfg:   engineCfg,
		source:      source,
		ranker:      ranker,
		cache:       forecast.NewCandidateCache(ttl, cleanup),
		log:         logger.NewForecastLogger(base),
	}, nil
}

// Predict loads the source and predicts the configured horizon after from
func (s *ForecastService) Predict(ctx context.Context, groupingName string, from time.Time) (*ForecastOutcome, error) {
	if s.source == nil {
		return nil, fmt.Errorf("data source is required")
	}
	batch, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.source.Name(), err)
	}
	return s.PredictObservations(ctx, batch.Observations, groupingName, from)
}

// PredictObservations trains on observations and predicts after from
func (s *ForecastService) PredictObservations(ctx context.Context, observations []models.Observation, groupingName string, from time.Time) (*ForecastOutcome, error) {
	grouping, err := backtest.GroupingByName(groupingName)
	if err != nil {
		return nil, err
	}
	predictor, err := forecast.NewPredictor(forecast.Config{
		Horizon:              s.forecastCfg.Horizon,
		TopN:                 s.engineCfg.TopN,
		MinGroupObservations: s.engineCfg.MinGroupObservations,
	}, s.ranker, grouping, s.cache, s.log)
	if err != nil {
		return nil, err
	}

	state, err := predictor.Train(observations)
	if err != nil {
		return nil, err
	}
	predictions, err := predictor.Predict(ctx, state, from)
	if err != nil {
		return nil, err
	}

	return &ForecastOutcome{
		Grouping:    grouping.Name(),
		Predictions: predictions,
		Tables:      forecast.BuildTables(state),
	}, nil
}

// WriteOutputs writes predictions and frequency tables under the output path
func (s *ForecastService) WriteOutputs(outcome *ForecastOutcome) error {
	dir := s.forecastCfg.OutputPath
	predPath := filepath.Join(dir, forecast.FileName(outcome.Grouping, forecast.PredictionsFileName))
	n, err := forecast.WritePredictionsCSV(outcome.Predictions, predPath)
	if err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	s.log.LogExport("predictions", predPath, n)

	posPath := filepath.Join(dir, forecast.FileName(outcome.Grouping, forecast.PositionalFileName))
	if n, err = forecast.WritePositionalCSV(outcome.Tables.Positional, posPath); err != nil {
		return fmt.Errorf("failed to write positional table: %w", err)
	}
	s.log.LogExport("positional", posPath, n)

	tripPath := filepath.Join(dir, forecast.FileName(outcome.Grouping, forecast.TripletsFileName))
	if n, err = forecast.WriteTripletsCSV(outcome.Tables.Triplets, tripPath); err != nil {
		return fmt.Errorf("failed to write triplet table: %w", err)
	}
	s.log.LogExport("triplets", tripPath, n)
	return nil
}

// ResetCache drops ranked candidates, e.g. after new draws were imported
func (s *ForecastService) ResetCache() {
	s.cache.Clear()
}
