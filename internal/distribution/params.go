// Package distribution turns counter statistics into a smoothed probability
// distribution over all 1000 triplets.
package distribution

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Params.Validate
var ErrInvalidParams = errors.New("invalid distribution params")

// Params controls smoothing and the blend between the two sub-models
type Params struct {
	// AlphaTriplet is the pseudo-count added to every triplet
	AlphaTriplet float64 `json:"alpha_triplet"`
	// AlphaPos is the pseudo-count added to every digit at every position
	AlphaPos float64 `json:"alpha_pos"`
	// Mix weights the triplet model; 1-Mix goes to the positional model
	Mix float64 `json:"mix"`
}

// DefaultParams returns Laplace smoothing with an even blend
func DefaultParams() Params {
	return Params{AlphaTriplet: 1.0, AlphaPos: 1.0, Mix: 0.5}
}

// Validate checks parameter ranges
func (p Params) Validate() error {
	if !(p.AlphaTriplet >= 0) {
		return fmt.Errorf("%w: alpha_triplet must be >= 0, got %v", ErrInvalidParams, p.AlphaTriplet)
	}
	if !(p.AlphaPos >= 0) {
		return fmt.Errorf("%w: alpha_pos must be >= 0, got %v", ErrInvalidParams, p.AlphaPos)
	}
	if !(p.Mix >= 0 && p.Mix <= 1) {
		return fmt.Errorf("%w: mix must be within [0,1], got %v", ErrInvalidParams, p.Mix)
	}
	return nil
}
