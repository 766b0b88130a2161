package chain

import (
	"errors"
	"testing"
	"time"

	"github.com/talentops/hireflow/internal/domain/entity"
)

func testChain(statuses ...string) []entity.Approver {
	approvers := make([]entity.Approver, len(statuses))
	for i, s := range statuses {
		approvers[i] = entity.Approver{
			ID:       string(rune('a'+i)) + "1",
			Name:     "Approver",
			Position: "Manager",
			Status:   s,
		}
	}
	return approvers
}

func idsOf(approvers []entity.Approver) []string {
	ids := make([]string, len(approvers))
	for i, a := range approvers {
		ids[i] = a.ID
	}
	return ids
}

func TestAdd(t *testing.T) {
	approvers, err := Add(nil, "Kim Osei", "VP Engineering")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(approvers) != 1 {
		t.Fatalf("len = %d, want 1", len(approvers))
	}
	a := approvers[0]
	if a.ID == "" {
		t.Error("Add() did not assign an ID")
	}
	if a.Status != entity.ApproverPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if a.DecidedAt != nil {
		t.Error("fresh approver has a decision timestamp")
	}

	second, err := Add(approvers, "Lee Park", "HR Director")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if second[1].Name != "Lee Park" {
		t.Error("Add() did not append at the end")
	}
	if second[0].ID == second[1].ID {
		t.Error("Add() produced duplicate IDs")
	}
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name     string
		approver string
		position string
	}{
		{"empty name", "", "Manager"},
		{"blank name", "   ", "Manager"},
		{"empty position", "Kim", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Add(nil, tt.approver, tt.position)
			if !errors.Is(err, ErrInvalidApprover) {
				t.Errorf("Add() error = %v, want ErrInvalidApprover", err)
			}
		})
	}
}

func TestRemove_Idempotent(t *testing.T) {
	approvers := testChain(entity.ApproverPending, entity.ApproverPending)

	removed := Remove(approvers, approvers[0].ID)
	if len(removed) != 1 {
		t.Fatalf("len = %d after remove, want 1", len(removed))
	}

	again := Remove(removed, "missing-id")
	if len(again) != 1 {
		t.Errorf("len = %d after removing missing ID, want 1", len(again))
	}
}

func TestMove_BoundaryNoOp(t *testing.T) {
	approvers := testChain(entity.ApproverPending, entity.ApproverPending, entity.ApproverPending)
	original := idsOf(approvers)

	up := MoveUp(approvers, 0)
	for i, id := range idsOf(up) {
		if id != original[i] {
			t.Errorf("MoveUp at index 0 reordered the chain")
		}
	}

	down := MoveDown(approvers, len(approvers)-1)
	for i, id := range idsOf(down) {
		if id != original[i] {
			t.Errorf("MoveDown at last index reordered the chain")
		}
	}
}

func TestMove_AdjacentSwap(t *testing.T) {
	approvers := testChain(entity.ApproverPending, entity.ApproverPending, entity.ApproverPending)
	first, second := approvers[0].ID, approvers[1].ID

	swapped := MoveUp(approvers, 1)
	if swapped[0].ID != second || swapped[1].ID != first {
		t.Error("MoveUp(1) did not swap with predecessor")
	}

	back := MoveDown(swapped, 0)
	if back[0].ID != first || back[1].ID != second {
		t.Error("MoveDown(0) did not swap with successor")
	}
}

func TestSetStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	approvers := testChain(entity.ApproverPending, entity.ApproverPending)
	target := approvers[0].ID

	updated, err := SetStatus(approvers, target, entity.ApproverApproved, "looks good", now)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated[0].Status != entity.ApproverApproved {
		t.Errorf("status = %s, want approved", updated[0].Status)
	}
	if updated[0].DecidedAt == nil || !updated[0].DecidedAt.Equal(now) {
		t.Errorf("DecidedAt = %v, want %v", updated[0].DecidedAt, now)
	}
	if updated[0].Comment != "looks good" {
		t.Errorf("comment = %q", updated[0].Comment)
	}
	if updated[1].Status != entity.ApproverPending {
		t.Error("SetStatus touched another approver")
	}

	if Derive(updated) != entity.StatusPendingApproval {
		t.Errorf("Derive = %s with one approval outstanding, want PENDING_APPROVAL", Derive(updated))
	}
}

func TestSetStatus_Errors(t *testing.T) {
	approvers := testChain(entity.ApproverPending)
	now := time.Now()

	if _, err := SetStatus(approvers, "missing", entity.ApproverApproved, "", now); !errors.Is(err, ErrApproverNotFound) {
		t.Errorf("SetStatus(missing) error = %v, want ErrApproverNotFound", err)
	}
	if _, err := SetStatus(approvers, approvers[0].ID, "PENDING", "", now); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("SetStatus(PENDING) error = %v, want ErrInvalidDecision", err)
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		expected string
	}{
		{"all approved", []string{entity.ApproverApproved, entity.ApproverApproved, entity.ApproverApproved}, entity.StatusApproved},
		{"one pending", []string{entity.ApproverApproved, entity.ApproverPending}, entity.StatusPendingApproval},
		{"rejection wins over pending", []string{entity.ApproverApproved, entity.ApproverRejected, entity.ApproverPending}, entity.StatusRejected},
		{"all pending", []string{entity.ApproverPending, entity.ApproverPending}, entity.StatusPendingApproval},
		{"empty chain has no requirement", nil, entity.StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(testChain(tt.statuses...)); got != tt.expected {
				t.Errorf("Derive() = %s, want %s", got, tt.expected)
			}
		})
	}
}
