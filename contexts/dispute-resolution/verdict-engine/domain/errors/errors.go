package errors

import "errors"

var (
	ErrInvalidVoteInput       = errors.New("invalid vote input")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
	ErrDilemmaNotFound        = errors.New("dilemma not found")
	ErrDilemmaNotActive       = errors.New("dilemma is not active")
	ErrDilemmaClosed          = errors.New("dilemma is closed and immutable")
	ErrVotingWindowClosed     = errors.New("voting window has closed")
	ErrInvalidChoice          = errors.New("choice is not valid for this dilemma category")
	ErrSelfJudgment           = errors.New("submitters cannot vote on their own dilemma")
	ErrVoterBanned            = errors.New("banned agents cannot vote")
	ErrVoterNotFound          = errors.New("voter not found")
	ErrVoteNotFound           = errors.New("vote not found")
	ErrConflict               = errors.New("verdict state conflict")
)
