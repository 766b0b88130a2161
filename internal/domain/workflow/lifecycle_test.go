package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestTriggerBetween(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		trigger Trigger
		ok      bool
	}{
		{"submit to approval", StateDraft, StatePendingApproval, TriggerSubmit, true},
		{"submit skipping approval", StateDraft, StateSent, TriggerSubmit, true},
		{"approve", StatePendingApproval, StateApproved, TriggerApprove, true},
		{"reject", StatePendingApproval, StateRejected, TriggerReject, true},
		{"send approved", StateApproved, StateSent, TriggerSend, true},
		{"revise rejected", StateRejected, StateDraft, TriggerRevise, true},
		{"sign", StateSent, StateSigned, TriggerSign, true},
		{"decline", StateSent, StateDeclined, TriggerDecline, true},
		{"expire", StateSent, StateExpired, TriggerExpire, true},
		{"signed is terminal", StateSigned, StateDraft, "", false},
		{"no skipping review", StateDraft, StateApproved, "", false},
		{"no reopening sent", StateSent, StateDraft, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, ok := TriggerBetween(tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("TriggerBetween(%s, %s) ok = %v, want %v", tt.from, tt.to, ok, tt.ok)
			}
			if ok && trigger != tt.trigger {
				t.Errorf("TriggerBetween(%s, %s) = %v, want %v", tt.from, tt.to, trigger, tt.trigger)
			}
		})
	}
}

func TestNewLifecycle_SubmitWithApprovers(t *testing.T) {
	machine := NewLifecycle(StateDraft, func() bool { return false })

	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire(SUBMIT) error = %v", err)
	}
	if machine.State() != StatePendingApproval {
		t.Errorf("State() = %v, want %v", machine.State(), StatePendingApproval)
	}
}

func TestNewLifecycle_SubmitEmptyChainSkipsApproval(t *testing.T) {
	machine := NewLifecycle(StateDraft, func() bool { return true })

	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire(SUBMIT) error = %v", err)
	}
	if machine.State() != StateSent {
		t.Errorf("State() = %v, want %v", machine.State(), StateSent)
	}
}

func TestNewLifecycle_FullApprovalPath(t *testing.T) {
	machine := NewLifecycle(StateDraft, func() bool { return false })
	ctx := context.Background()

	for _, trigger := range []Trigger{TriggerSubmit, TriggerApprove, TriggerSend, TriggerSign} {
		if err := machine.Fire(ctx, trigger); err != nil {
			t.Fatalf("Fire(%s) error = %v", trigger, err)
		}
	}

	if machine.State() != StateSigned {
		t.Errorf("State() = %v, want %v", machine.State(), StateSigned)
	}
	if !machine.State().IsTerminal() {
		t.Error("signed state should be terminal")
	}
	if err := machine.Fire(ctx, TriggerRevise); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire from terminal state error = %v, want ErrInvalidTransition", err)
	}
}

func TestNewLifecycle_RejectedCanBeRevised(t *testing.T) {
	machine := NewLifecycle(StateRejected, func() bool { return false })

	if err := machine.Fire(context.Background(), TriggerRevise); err != nil {
		t.Fatalf("Fire(REVISE) error = %v", err)
	}
	if machine.State() != StateDraft {
		t.Errorf("State() = %v, want %v", machine.State(), StateDraft)
	}
}
