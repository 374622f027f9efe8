package logger

import "errors"

// ErrUnknownLevel is returned by SetLevelString for unrecognized level names.
var ErrUnknownLevel = errors.New("unknown log level")
