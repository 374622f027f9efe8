package repository

import "errors"

// Sentinel kinds for profile store errors.
var (
	ErrNotFound          = errors.New("profile not found")
	ErrStoreClosed       = errors.New("profile store closed")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
