package workflow

// State represents a record status in the offer/onboarding lifecycle
type State string

const (
	StateDraft           State = "DRAFT"
	StatePendingApproval State = "PENDING_APPROVAL"
	StateApproved        State = "APPROVED"
	StateRejected        State = "REJECTED"
	StateSent            State = "SENT"
	StateSigned          State = "SIGNED"
	StateDeclined        State = "DECLINED"
	StateExpired         State = "EXPIRED"
)

var validStates = map[State]bool{
	StateDraft:           true,
	StatePendingApproval: true,
	StateApproved:        true,
	StateRejected:        true,
	StateSent:            true,
	StateSigned:          true,
	StateDeclined:        true,
	StateExpired:         true,
}

var terminalStates = map[State]bool{
	StateSigned:   true,
	StateDeclined: true,
	StateExpired:  true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
