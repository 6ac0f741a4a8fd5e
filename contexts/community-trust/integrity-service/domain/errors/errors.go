package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid integrity request")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrScoreHidden    = errors.New("integrity score is hidden for this agent")
)
