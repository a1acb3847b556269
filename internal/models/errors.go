package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrInvalidID         = errors.New("invalid ID format")
	ErrScenarioLimit     = errors.New("scenario limit reached")
	ErrBaselineProtected = errors.New("baseline scenario cannot be removed")
)
