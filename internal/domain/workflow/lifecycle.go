package workflow

import "context"

// lifecyclePairs is the closed transition table for records. The source
// system allowed any status to be set from any status; this table closes
// that gap. Draft submission resolves to PendingApproval or directly to
// Sent depending on whether the record carries an approval chain.
var lifecyclePairs = map[State]map[State]Trigger{
	StateDraft: {
		StatePendingApproval: TriggerSubmit,
		StateSent:            TriggerSubmit,
	},
	StatePendingApproval: {
		StateApproved: TriggerApprove,
		StateRejected: TriggerReject,
	},
	StateApproved: {
		StateSent: TriggerSend,
	},
	StateRejected: {
		StateDraft: TriggerRevise,
	},
	StateSent: {
		StateSigned:   TriggerSign,
		StateDeclined: TriggerDecline,
		StateExpired:  TriggerExpire,
	},
}

// TriggerBetween resolves the trigger that moves a record from one status
// to another, or false when the transition is not in the lifecycle table.
func TriggerBetween(from, to State) (Trigger, bool) {
	trigger, ok := lifecyclePairs[from][to]
	return trigger, ok
}

// Legal reports whether a direct transition between the two states exists.
func Legal(from, to State) bool {
	_, ok := TriggerBetween(from, to)
	return ok
}

// NewLifecycle builds the record state machine starting at the given state.
// chainEmpty reports whether the record's approval chain is empty; a draft
// submitted with no approvers skips approval and goes straight to Sent,
// while one with approvers enters PendingApproval.
func NewLifecycle(initial State, chainEmpty func() bool) StateMachine {
	builder := NewBuilder()

	builder.
		PermitIf(StateDraft, TriggerSubmit, StatePendingApproval, func(_ context.Context) bool {
			return !chainEmpty()
		}).
		PermitIf(StateDraft, TriggerSubmit, StateSent, func(_ context.Context) bool {
			return chainEmpty()
		}).
		Permit(StatePendingApproval, TriggerApprove, StateApproved).
		Permit(StatePendingApproval, TriggerReject, StateRejected).
		Permit(StateApproved, TriggerSend, StateSent).
		Permit(StateRejected, TriggerRevise, StateDraft).
		Permit(StateSent, TriggerSign, StateSigned).
		Permit(StateSent, TriggerDecline, StateDeclined).
		Permit(StateSent, TriggerExpire, StateExpired)

	return builder.Build(initial)
}
