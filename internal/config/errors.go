package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrLoadConfig wraps failures reading the YAML file or the DFSP_ environment.
	ErrLoadConfig = errors.New("load configuration")
)
