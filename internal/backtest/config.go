package backtest

import (
	"fmt"
	"sort"

	"github.com/yourusername/triplet-forecast/internal/config"
	"github.com/yourusername/triplet-forecast/internal/distribution"
)

const (
	defaultMinTrain      = 50
	defaultCheckInterval = 256
)

// DefaultTopKs are the cut-offs reported when none are configured
var DefaultTopKs = []int{1, 5, 10, 20}

// Config holds expanding-window backtest settings
type Config struct {
	MinTrain             int
	Params               distribution.Params
	TopKs                []int
	MinGroupObservations int
	Workers              int
	CheckInterval        int
}

// DefaultConfig returns the settings used by the shipped configuration
func DefaultConfig() Config {
	return Config{
		MinTrain:             defaultMinTrain,
		Params:               distribution.DefaultParams(),
		TopKs:                append([]int(nil), DefaultTopKs...),
		MinGroupObservations: 1,
		Workers:              1,
		CheckInterval:        defaultCheckInterval,
	}
}

// FromConfig converts the engine section of the app config
func FromConfig(cfg *config.EngineConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("engine config is required")
	}
	bt := Config{
		MinTrain: cfg.MinTrain,
		Params: distribution.Params{
			AlphaTriplet: cfg.AlphaTriplet,
			AlphaPos:     cfg.AlphaPos,
			Mix:          cfg.Mix,
		},
		TopKs:                append([]int(nil), cfg.TopKs...),
		MinGroupObservations: cfg.MinGroupObservations,
		Workers:              cfg.Workers,
	}
	bt = bt.withDefaults()
	return bt, bt.Validate()
}

func (c Config) withDefaults() Config {
	if len(c.TopKs) == 0 {
		c.TopKs = append([]int(nil), DefaultTopKs...)
	}
	if c.MinGroupObservations <= 0 {
		c.MinGroupObservations = 1
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = defaultCheckInterval
	}
	return c
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.MinTrain < 1 {
		return fmt.Errorf("min train must be at least 1")
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if len(c.TopKs) == 0 {
		return fmt.Errorf("at least one top-k cut-off is required")
	}
	if !sort.IntsAreSorted(c.TopKs) {
		return fmt.Errorf("top-k cut-offs must be ascending")
	}
	for i, k := range c.TopKs {
		if k < 1 {
			return fmt.Errorf("top-k cut-off must be positive, got %d", k)
		}
		if i > 0 && c.TopKs[i-1] == k {
			return fmt.Errorf("duplicate top-k cut-off %d", k)
		}
	}
	if c.MinGroupObservations < 1 {
		return fmt.Errorf("min group observations must be at least 1")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
