package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNotCSV       = errors.New("file must be a CSV")
	ErrNotStarted   = errors.New("service not started")
	ErrJobNotFound  = errors.New("job not found")
	ErrBackpressure = errors.New("analysis queue is full")
)
