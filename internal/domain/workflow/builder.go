package workflow

import "fmt"

// Builder assembles a state machine configuration trigger by trigger.
type Builder struct {
	configurations map[State]map[Trigger][]transition
}

// NewBuilder creates a new state machine builder
func NewBuilder() *Builder {
	return &Builder{
		configurations: make(map[State]map[Trigger][]transition),
	}
}

// Permit allows a trigger to transition from one state to another
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	return b.PermitIf(from, trigger, to, nil)
}

// PermitIf allows a trigger to transition from one state to another if the
// guard condition passes. Multiple guarded targets for the same trigger are
// tried in registration order.
func (b *Builder) PermitIf(from State, trigger Trigger, to State, guard GuardFunc) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}

	triggers, exists := b.configurations[from]
	if !exists {
		triggers = make(map[Trigger][]transition)
		b.configurations[from] = triggers
	}
	triggers[trigger] = append(triggers[trigger], transition{toState: to, guard: guard})
	return b
}

// Build creates a new state machine instance with the given initial state.
// The configuration is copied so machines built from the same builder do
// not share mutable state.
func (b *Builder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configsCopy := make(map[State]map[Trigger][]transition, len(b.configurations))
	for state, triggers := range b.configurations {
		triggersCopy := make(map[Trigger][]transition, len(triggers))
		for trigger, transitions := range triggers {
			triggersCopy[trigger] = append([]transition{}, transitions...)
		}
		configsCopy[state] = triggersCopy
	}

	return &stateMachine{
		currentState:   initialState,
		configurations: configsCopy,
	}
}
