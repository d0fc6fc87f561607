package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/triplet-forecast/internal/datasource"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/models"
	"github.com/yourusername/triplet-forecast/internal/repository"
)

// IngestionStats tracks statistics about one import
type IngestionStats struct {
	Source     string
	Loaded     int
	Inserted   int
	Duplicates int
	Skipped    int
	FirstDate  time.Time
	LastDate   time.Time
	Duration   time.Duration
}

// String returns a one-line summary
func (s IngestionStats) String() string {
	return fmt.Sprintf("source=%s loaded=%d inserted=%d duplicates=%d skipped=%d duration=%v",
		s.Source, s.Loaded, s.Inserted, s.Duplicates, s.Skipped, s.Duration)
}

// IngestionService copies a draw history into the draws table
type IngestionService struct {
	source datasource.Source
	repo   repository.ObservationRepository
	logger *logrus.Logger
	audit  *logger.AuditLogger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(source datasource.Source, repo repository.ObservationRepository, log *logrus.Logger) *IngestionService {
	if log == nil {
		log = logrus.New()
	}
	return &IngestionService{
		source: source,
		repo:   repo,
		logger: log,
		audit:  logger.NewAuditLogger(log),
	}
}

// Import loads the source and inserts it. Draws already stored
// for the same date and position are counted as duplicates.
func (s *IngestionService) Import(ctx context.Context) (*IngestionStats, error) {
	started := time.Now()
	stats := &IngestionStats{Source: s.source.Name()}

	batch, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.source.Name(), err)
	}
	obs := make([]models.Observation, len(batch.Observations))
	copy(obs, batch.Observations)
	models.SortObservations(obs)

	stats.Loaded = len(obs)
	stats.Skipped = batch.Skipped
	if len(obs) > 0 {
		stats.FirstDate = obs[0].Date
		stats.LastDate = obs[len(obs)-1].Date
	}

	// a single batch keeps same-date draws numbered consecutively
	inserted, err := s.repo.InsertBatch(ctx, obs)
	if err != nil {
		return nil, fmt.Errorf("failed to import draws: %w", err)
	}
	stats.Inserted = inserted
	stats.Duplicates = stats.Loaded - inserted
	stats.Duration = time.Since(started)

	metrics.RecordObservationsImported(stats.Inserted)
	metrics.RecordObservationsRejected(stats.Skipped)
	s.audit.LogImport(stats.Source, stats.Loaded, stats.Inserted, stats.FirstDate, stats.LastDate)
	s.logger.WithFields(logrus.Fields{
		"source":     stats.Source,
		"loaded":     stats.Loaded,
		"inserted":   stats.Inserted,
		"duplicates": stats.Duplicates,
		"skipped":    stats.Skipped,
		"duration":   stats.Duration,
	}).Info("Import complete")

	return stats, nil
}
