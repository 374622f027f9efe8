package model

import "errors"

var (
	// ErrInvalidEntry is returned when an entry violates its field invariants.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrInvalidMetrics is returned when behavioral metrics are out of range.
	ErrInvalidMetrics = errors.New("invalid behavioral metrics")
	// ErrInvalidPersonaScore is returned when persona scores are out of range or do not sum to one.
	ErrInvalidPersonaScore = errors.New("invalid persona score")
	// ErrInvalidWeights is returned for negative pattern weights.
	ErrInvalidWeights = errors.New("invalid pattern weights")
	// ErrUnknownPattern is returned when a pattern name is not one of the fixed categories.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrUnknownPersona is returned when a persona name cannot be resolved.
	ErrUnknownPersona = errors.New("unknown persona")
	// ErrUnknownContestType is returned when a contest type tag is outside the enumeration.
	ErrUnknownContestType = errors.New("unknown contest type")
	// ErrUnknownPlatform is returned when a platform tag is not supported.
	ErrUnknownPlatform = errors.New("unknown platform")
)
