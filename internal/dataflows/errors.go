package dataflows

import "errors"

var (
	// ErrNotFound means the ticker does not resolve to a listed security.
	ErrNotFound = errors.New("ticker not found")
	// ErrUnavailable means the data source could not be reached or is
	// rate limiting us.
	ErrUnavailable = errors.New("data source unavailable")
)
