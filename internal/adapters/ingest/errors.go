package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrUnknownPlatform = errors.New("could not detect platform from CSV headers")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingEntryID  = errors.New("entry id cannot be empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")
)
