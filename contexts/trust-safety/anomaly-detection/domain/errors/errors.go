package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid detection request")
	ErrSelfComparison = errors.New("cannot correlate an agent with itself")
)
