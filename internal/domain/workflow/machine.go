package workflow

import (
	"context"
	"fmt"
)

// GuardFunc is a function that evaluates whether a transition should be allowed
type GuardFunc func(ctx context.Context) bool

// StateMachine tracks the current state of one record and validates
// transitions against the configured lifecycle table.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}

// transition represents a state transition with optional guard
type transition struct {
	toState State
	guard   GuardFunc
}

type stateMachine struct {
	currentState   State
	configurations map[State]map[Trigger][]transition
}

// State returns the current state
func (m *stateMachine) State() State {
	return m.currentState
}

// CanFire returns true if the trigger is permitted in the current state.
// Guards are not evaluated here; a guarded transition counts as permitted.
func (m *stateMachine) CanFire(trigger Trigger) bool {
	triggers, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}
	return len(triggers[trigger]) > 0
}

// Fire attempts to execute the trigger, transitioning to the new state if
// allowed. When multiple targets are configured for a trigger, the first
// whose guard passes wins.
func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	triggers, exists := m.configurations[m.currentState]
	if !exists {
		return fmt.Errorf("%w: cannot fire trigger %s from terminal state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	transitions := triggers[trigger]
	if len(transitions) == 0 {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.currentState = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.currentState)
}

// PermittedTriggers returns all triggers that can be fired in the current state
func (m *stateMachine) PermittedTriggers() []Trigger {
	triggers, exists := m.configurations[m.currentState]
	if !exists {
		return []Trigger{}
	}

	result := make([]Trigger, 0, len(triggers))
	for trigger := range triggers {
		result = append(result, trigger)
	}
	return result
}
