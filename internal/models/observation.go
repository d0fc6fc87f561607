package models

import (
	"fmt"
	"sort"
	"time"
)

// Observation is one drawn value on a calendar date
type Observation struct {
	Date  time.Time `json:"date"`
	Value Triplet   `json:"value"`
}

// NewObservation validates raw and truncates date to the calendar day
func NewObservation(date time.Time, raw string) (Observation, error) {
	if date.IsZero() {
		return Observation{}, fmt.Errorf("%w: date is required", ErrInvalidObservation)
	}
	value, err := ParseTriplet(raw)
	if err != nil {
		return Observation{}, err
	}
	return Observation{Date: Day(date), Value: value}, nil
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SortObservations orders by date, keeping input order for equal dates
func SortObservations(obs []Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
}

// ValidateObservations rejects values outside the triplet domain
func ValidateObservations(obs []Observation) error {
	for i, o := range obs {
		if !o.Value.Valid() {
			return fmt.Errorf("%w: index %d has value %d", ErrInvalidObservation, i, o.Value)
		}
		if o.Date.IsZero() {
			return fmt.Errorf("%w: index %d has no date", ErrInvalidObservation, i)
		}
	}
	return nil
}
