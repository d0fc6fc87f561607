// Package forecast ranks candidates for future dates from the full history.
package forecast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/triplet-forecast/internal/backtest"
	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/models"
	"github.com/yourusername/triplet-forecast/internal/ranking"
)

// DefaultHorizon is one year of daily predictions
const DefaultHorizon = 365

// Config controls forward prediction
type Config struct {
	Horizon              int
	TopN                 int
	MinGroupObservations int
}

// Prediction is the ranked candidate list for one future date
type Prediction struct {
	Date             time.Time           `json:"date"`
	Source           string              `json:"source"`
	Key              string              `json:"key"`
	ObservationsUsed int                 `json:"observations_used"`
	Candidates       []ranking.Candidate `json:"candidates"`
}

// CandidateText renders "NNN (score:x.xxxx%, count:c)"
func CandidateText(c ranking.Candidate) string {
	pct := decimal.NewFromFloat(c.Score).Shift(2).StringFixed(4)
	return fmt.Sprintf("%s (score:%s%%, count:%d)", c.Triplet, pct, c.Count)
}

// TopText joins the candidates with " | "
func (p Prediction) TopText() string {
	parts := make([]string, len(p.Candidates))
	for i, c := range p.Candidates {
		parts[i] = CandidateText(c)
	}
	return strings.Join(parts, " | ")
}

// Predictor produces forward predictions
type Predictor struct {
	config   Config
	ranker   ranking.Ranker
	grouping backtest.Grouping
	cache    *CandidateCache
	logger   *logger.ForecastLogger
}

// NewPredictor wires a predictor; cache and log may be nil
func NewPredictor(cfg Config, ranker ranking.Ranker, grouping backtest.Grouping, cache *CandidateCache, log *logger.ForecastLogger) (*Predictor, error) {
	if ranker == nil {
		return nil, fmt.Errorf("ranker is required")
	}
	if grouping == nil {
		grouping = backtest.Constant{}
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultHorizon
	}
	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", cfg.TopN)
	}
	if cfg.MinGroupObservations <= 0 {
		cfg.MinGroupObservations = 1
	}
	return &Predictor{
		config:   cfg,
		ranker:   ranker,
		grouping: grouping,
		cache:    cache,
		logger:   log,
	}, nil
}

// Train folds the whole history under the predictor's grouping
func (p *Predictor) Train(observations []models.Observation) (*counter.Groups, error) {
	if err := models.ValidateObservations(observations); err != nil {
		return nil, err
	}
	return backtest.Replay(observations, p.grouping), nil
}

// Predict ranks candidates for each of the Horizon days after from
func (p *Predictor) Predict(ctx context.Context, state *counter.Groups, from time.Time) ([]Prediction, error) {
	if state == nil {
		return nil, fmt.Errorf("counter state is required")
	}
	start := time.Now()
	day := models.Day(from)

	predictions := make([]Prediction, 0, p.config.Horizon)
	for i := 1; i <= p.config.Horizon; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("prediction cancelled after %d days: %w", i-1, err)
		}
		date := day.AddDate(0, 0, i)
		level, key, snap := backtest.SelectEvidence(state, p.grouping.Keys(date), p.config.MinGroupObservations)
		predictions = append(predictions, Prediction{
			Date:             date,
			Source:           level,
			Key:              key,
			ObservationsUsed: snap.Total(),
			Candidates:       p.rank(key, snap),
		})
	}

	metrics.RecordPredictions(p.grouping.Name(), p.ranker.Name(), len(predictions))
	if p.logger != nil {
		p.logger.LogPredictionBatch(p.grouping.Name(), p.ranker.Name(), day, p.config.Horizon, p.config.TopN, time.Since(start))
		if p.cache != nil {
			hits, misses, _ := p.cache.Stats()
			p.logger.LogCacheStats(hits, misses, p.cache.ItemCount())
		}
	}
	return predictions, nil
}

func (p *Predictor) rank(key string, snap counter.Snapshot) []ranking.Candidate {
	cacheKey := CacheKey{
		Strategy:    p.ranker.Name(),
		TopN:        p.config.TopN,
		Evidence:    key,
		Total:       snap.Total(),
		Fingerprint: snap.Fingerprint(),
	}
	if p.cache != nil {
		if cands, ok := p.cache.Get(cacheKey); ok {
			return cands
		}
	}

	started := time.Now()
	cands := p.ranker.Rank(snap, p.config.TopN)
	metrics.RecordRankingDuration(p.ranker.Name(), time.Since(started).Seconds())

	if p.cache != nil {
		p.cache.Set(cacheKey, cands)
	}
	return cands
}
