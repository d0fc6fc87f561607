package backtest

import (
	"fmt"
	"time"
)

// WalkForwardConfig splits the evaluated steps into consecutive windows
type WalkForwardConfig struct {
	WindowSize int
	MinTests   int
}

// WalkForwardWindow is the summary of one slice of the timeline
type WalkForwardWindow struct {
	WindowID  int       `json:"window_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Summary   Summary   `json:"summary"`
}

// WalkForwardResult describes how stable a run is over time
type WalkForwardResult struct {
	Windows          []WalkForwardWindow `json:"windows"`
	ConsistencyScore float64             `json:"consistency_score"`
	MRRDrift         float64             `json:"mrr_drift"`
}

// RunWalkForward summarizes each window of a finished run. Every step was
// already scored out-of-sample, so windows never need retraining.
func RunWalkForward(result *Result, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if result == nil {
		return WalkForwardResult{}, fmt.Errorf("result is required")
	}
	if cfg.WindowSize <= 0 {
		return WalkForwardResult{}, fmt.Errorf("window size must be positive")
	}
	if cfg.MinTests <= 0 {
		cfg.MinTests = 1
	}

	windows := []WalkForwardWindow{}
	for start := 0; start < len(result.Steps); start += cfg.WindowSize {
		end := start + cfg.WindowSize
		if end > len(result.Steps) {
			end = len(result.Steps)
		}
		if end-start < cfg.MinTests {
			continue
		}
		slice := result.Steps[start:end]
		summary := Summarize(slice, result.Config.TopKs)
		summary.Grouping = result.Grouping
		summary.TrainSize = result.Config.MinTrain + start
		windows = append(windows, WalkForwardWindow{
			WindowID:  len(windows) + 1,
			StartDate: slice[0].Date,
			EndDate:   slice[len(slice)-1].Date,
			Summary:   summary,
		})
	}

	return WalkForwardResult{
		Windows:          windows,
		ConsistencyScore: CalculateConsistency(windows),
		MRRDrift:         calculateDrift(windows),
	}, nil
}

// CalculateConsistency calculates the share of windows beating uniform MRR
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	beating := 0
	for _, w := range windows {
		if w.Summary.MRR > w.Summary.Baseline.MRR {
			beating++
		}
	}
	return float64(beating) / float64(len(windows))
}

func calculateDrift(windows []WalkForwardWindow) float64 {
	if len(windows) < 2 {
		return 0
	}
	return windows[len(windows)-1].Summary.MRR - windows[0].Summary.MRR
}
