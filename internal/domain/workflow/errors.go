package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status transition is not in the lifecycle table
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidState is returned when a state is not a valid lifecycle state
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a transition's guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")
)
