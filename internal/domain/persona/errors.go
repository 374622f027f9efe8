package persona

import "errors"

var (
	// ErrUnknownMetric is returned when a signal references a metric outside the enumeration.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrInvalidCalibration is returned for malformed signal tables.
	ErrInvalidCalibration = errors.New("invalid calibration")
)
