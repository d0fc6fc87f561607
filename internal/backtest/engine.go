package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/triplet-forecast/internal/counter"
	"github.com/yourusername/triplet-forecast/internal/distribution"
	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/models"
)

// ErrInsufficientData is returned when there is nothing left to evaluate
// after the warm-up window. It is an expected outcome, not a failure.
var ErrInsufficientData = errors.New("insufficient data for backtest")

// Engine orchestrates expanding-window backtesting runs
type Engine struct {
	config Config
	logger *logrus.Logger
	log    *logger.BacktestLogger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg Config, base *logrus.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if base == nil {
		base = logrus.New()
	}
	return &Engine{config: cfg, logger: base, log: logger.NewBacktestLogger(base)}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// Run scores every observation past the warm-up window using only the
// observations dated before it, then folds it into the statistics.
func (e *Engine) Run(ctx context.Context, observations []models.Observation, grouping Grouping) (*Result, error) {
	if grouping == nil {
		grouping = Constant{}
	}
	if err := models.ValidateObservations(observations); err != nil {
		return nil, err
	}

	obs := make([]models.Observation, len(observations))
	copy(obs, observations)
	models.SortObservations(obs)

	if len(obs) <= e.config.MinTrain {
		return nil, fmt.Errorf("%w: %d observations, need more than %d", ErrInsufficientData, len(obs), e.config.MinTrain)
	}

	started := time.Now()
	e.log.LogRunStarted(grouping.Name(), len(obs), e.config.MinTrain, e.config.Workers)

	state := counter.NewGroups()
	for _, o := range obs[:e.config.MinTrain] {
		state.Fold(keyStrings(grouping.Keys(o.Date)), o.Value)
	}

	steps := make([]Step, len(obs)-e.config.MinTrain)
	var err error
	if e.config.Workers > 1 {
		err = e.evaluateParallel(ctx, obs, grouping, state, steps)
	} else {
		err = e.evaluateSequential(ctx, obs, grouping, state, steps)
	}
	if err != nil {
		return nil, err
	}

	summary := Summarize(steps, e.config.TopKs)
	summary.Grouping = grouping.Name()
	summary.TrainSize = e.config.MinTrain

	e.log.LogRunCompleted(summary.Grouping, summary.TotalTests, summary.HitRates, summary.MRR, summary.MeanBrier, time.Since(started))

	return &Result{
		Grouping: grouping.Name(),
		Config:   e.config,
		Summary:  summary,
		Steps:    steps,
		State:    state,
	}, nil
}

func (e *Engine) evaluateSequential(ctx context.Context, obs []models.Observation, grouping Grouping, state *counter.Groups, steps []Step) error {
	for slot := range steps {
		if err := e.checkpoint(ctx, slot); err != nil {
			return err
		}
		j := e.prepare(state, grouping, obs, slot)
		steps[slot] = e.score(j)
		state.Fold(keyStrings(grouping.Keys(j.obs.Date)), j.obs.Value)
	}
	return nil
}

// evaluateParallel keeps folding on a single producer and fans scoring out
// to workers. Every job owns its snapshot, so workers share nothing.
func (e *Engine) evaluateParallel(ctx context.Context, obs []models.Observation, grouping Grouping, state *counter.Groups, steps []Step) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, e.config.Workers*2)

	g.Go(func() error {
		defer close(jobs)
		for slot := range steps {
			if err := e.checkpoint(gctx, slot); err != nil {
				return err
			}
			j := e.prepare(state, grouping, obs, slot)
			select {
			case jobs <- j:
			case <-gctx.Done():
				return fmt.Errorf("backtest interrupted at step %d: %w", slot, gctx.Err())
			}
			state.Fold(keyStrings(grouping.Keys(j.obs.Date)), j.obs.Value)
		}
		return nil
	})

	for w := 0; w < e.config.Workers; w++ {
		g.Go(func() error {
			for j := range jobs {
				steps[j.slot] = e.score(j)
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Engine) checkpoint(ctx context.Context, slot int) error {
	if slot%e.config.CheckInterval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backtest interrupted at step %d: %w", slot, err)
	}
	if slot > 0 {
		e.log.WithField("step", slot).Debug("Backtest progress")
	}
	return nil
}

func (e *Engine) prepare(state *counter.Groups, grouping Grouping, obs []models.Observation, slot int) job {
	index := e.config.MinTrain + slot
	o := obs[index]
	level, key, snap := SelectEvidence(state, grouping.Keys(o.Date), e.config.MinGroupObservations)
	return job{slot: slot, index: index, obs: o, level: level, key: key, snap: snap}
}

func (e *Engine) score(j job) Step {
	dist := distribution.Build(j.snap, j.snap, e.config.Params)
	rank := dist.Rank(j.obs.Value)
	hits := make([]bool, len(e.config.TopKs))
	for i, k := range e.config.TopKs {
		hits[i] = rank <= k
	}
	return Step{
		Index:            j.index,
		Date:             j.obs.Date,
		Truth:            j.obs.Value,
		PTrue:            dist.Prob(j.obs.Value),
		Rank:             rank,
		Brier:            dist.Brier(j.obs.Value),
		InTopK:           hits,
		ObservationsUsed: j.snap.Total(),
		Level:            j.level,
		Key:              j.key,
	}
}

// Replay folds every observation into a fresh grouped collection
func Replay(observations []models.Observation, grouping Grouping) *counter.Groups {
	if grouping == nil {
		grouping = Constant{}
	}
	obs := make([]models.Observation, len(observations))
	copy(obs, observations)
	models.SortObservations(obs)

	state := counter.NewGroups()
	for _, o := range obs {
		state.Fold(keyStrings(grouping.Keys(o.Date)), o.Value)
	}
	return state
}
