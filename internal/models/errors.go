package models

import "errors"

// Custom errors
var (
	ErrInvalidObservation = errors.New("invalid observation")
	ErrNotFound           = errors.New("record not found")
)
