package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been created.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the question bank could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidBank indicates a question bank failed validation.
	ErrInvalidBank = errors.New("invalid question bank")
	// ErrInvalidTransition is returned when an operation is invoked in the wrong phase.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrIndexOutOfRange is returned for question or option indexes outside their bounds.
	ErrIndexOutOfRange = errors.New("index out of range")
)
