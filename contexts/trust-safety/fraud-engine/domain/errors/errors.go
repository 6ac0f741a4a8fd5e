package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid fraud request")
	ErrAgentNotFound    = errors.New("agent not found")
	ErrUnknownEventType = errors.New("unknown fraud event type")
	ErrAgentNotBanned   = errors.New("agent is not banned")
	ErrNegativeScore    = errors.New("fraud score cannot be negative")
	ErrConflict         = errors.New("fraud state conflict")
)
