package errors

import "errors"

var (
	ErrInvalidTierTable = errors.New("tier table must be an ordered, non-overlapping partition")
	ErrNoMatchingTier   = errors.New("no tier matches the current population")
	ErrTiersUnavailable = errors.New("tier table is unavailable")
)
