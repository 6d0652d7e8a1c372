package retry

import "errors"

var (
	// ErrInvalidMaxAttempts indicates MaxAttempts was zero or negative.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
