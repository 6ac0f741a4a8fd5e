package errors

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid audit session request")
	ErrSessionNotFound = errors.New("audit session not found")
	ErrSessionTerminal = errors.New("audit session is already terminal")
	ErrNoQuestions     = errors.New("audit session needs at least one question")
)
