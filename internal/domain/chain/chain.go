// Package chain implements operations on a record's ordered approval chain:
// append, idempotent removal, adjacent-swap reordering, decision recording,
// and derivation of the chain-level status.
package chain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentops/hireflow/internal/domain/entity"
)

var (
	// ErrApproverNotFound is returned when a decision targets a missing approver
	ErrApproverNotFound = errors.New("approver not found")

	// ErrInvalidApprover is returned when an approver is added with missing fields
	ErrInvalidApprover = errors.New("invalid approver")

	// ErrInvalidDecision is returned when a decision status is not approved or rejected
	ErrInvalidDecision = errors.New("invalid approver decision")
)

// Add appends a pending approver to the end of the chain. Name and position
// are required.
func Add(approvers []entity.Approver, name, position string) ([]entity.Approver, error) {
	if strings.TrimSpace(name) == "" {
		return approvers, fmt.Errorf("%w: name is required", ErrInvalidApprover)
	}
	if strings.TrimSpace(position) == "" {
		return approvers, fmt.Errorf("%w: position is required", ErrInvalidApprover)
	}

	return append(approvers, entity.Approver{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Position: strings.TrimSpace(position),
		Status:   entity.ApproverPending,
	}), nil
}

// Remove filters out the approver with the given ID. Removing an absent
// approver is a no-op, matching idempotent-delete semantics.
func Remove(approvers []entity.Approver, approverID string) []entity.Approver {
	result := make([]entity.Approver, 0, len(approvers))
	for _, a := range approvers {
		if a.ID != approverID {
			result = append(result, a)
		}
	}
	return result
}

// MoveUp swaps the approver at index with its predecessor. No-op at the top.
func MoveUp(approvers []entity.Approver, index int) []entity.Approver {
	if index <= 0 || index >= len(approvers) {
		return approvers
	}
	approvers[index-1], approvers[index] = approvers[index], approvers[index-1]
	return approvers
}

// MoveDown swaps the approver at index with its successor. No-op at the bottom.
func MoveDown(approvers []entity.Approver, index int) []entity.Approver {
	if index < 0 || index >= len(approvers)-1 {
		return approvers
	}
	approvers[index], approvers[index+1] = approvers[index+1], approvers[index]
	return approvers
}

// IndexOf returns the position of an approver in the chain, or -1.
func IndexOf(approvers []entity.Approver, approverID string) int {
	for i, a := range approvers {
		if a.ID == approverID {
			return i
		}
	}
	return -1
}

// SetStatus records a decision for one approver, stamping the decision
// time. A decision on an already-decided approver is treated as a new
// decision with a fresh timestamp.
func SetStatus(approvers []entity.Approver, approverID, status, comment string, now time.Time) ([]entity.Approver, error) {
	if status != entity.ApproverApproved && status != entity.ApproverRejected {
		return approvers, fmt.Errorf("%w: %s", ErrInvalidDecision, status)
	}

	i := IndexOf(approvers, approverID)
	if i < 0 {
		return approvers, fmt.Errorf("%w: %s", ErrApproverNotFound, approverID)
	}

	decidedAt := now
	approvers[i].Status = status
	approvers[i].DecidedAt = &decidedAt
	approvers[i].Comment = comment
	return approvers, nil
}

// Derive computes the chain-level status: any rejection wins, a full set of
// approvals means approved, anything else is still pending. An empty chain
// carries no approval requirement and derives as approved. Derivation is
// order-independent; list position only implies display order.
func Derive(approvers []entity.Approver) string {
	approved := 0
	for _, a := range approvers {
		switch a.Status {
		case entity.ApproverRejected:
			return entity.StatusRejected
		case entity.ApproverApproved:
			approved++
		}
	}
	if approved == len(approvers) {
		return entity.StatusApproved
	}
	return entity.StatusPendingApproval
}
