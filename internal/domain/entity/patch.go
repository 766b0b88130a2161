package entity

import (
	"fmt"
	"time"
)

// Patch is a partial update applied to a payload by shallow merge. Only
// non-nil fields are merged; the patch performs no validation.
type Patch interface {
	// Kind returns the record kind the patch applies to.
	Kind() string

	// Apply shallow-merges the patch into the payload.
	Apply(p Payload) error
}

// OfferPatch is a partial OfferPayload. Nil fields are left untouched.
type OfferPatch struct {
	CandidateID      *string    `json:"candidate_id,omitempty"`
	CandidateName    *string    `json:"candidate_name,omitempty"`
	JobRequisitionID *string    `json:"job_requisition_id,omitempty"`
	JobTitle         *string    `json:"job_title,omitempty"`
	Department       *string    `json:"department,omitempty"`
	Salary           *float64   `json:"salary,omitempty"`
	Currency         *string    `json:"currency,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

func (op *OfferPatch) Kind() string { return KindOffer }

func (op *OfferPatch) Apply(p Payload) error {
	offer, ok := p.(*OfferPayload)
	if !ok {
		return fmt.Errorf("offer patch applied to %s payload", p.Kind())
	}
	if op.CandidateID != nil {
		offer.CandidateID = *op.CandidateID
	}
	if op.CandidateName != nil {
		offer.CandidateName = *op.CandidateName
	}
	if op.JobRequisitionID != nil {
		offer.JobRequisitionID = *op.JobRequisitionID
	}
	if op.JobTitle != nil {
		offer.JobTitle = *op.JobTitle
	}
	if op.Department != nil {
		offer.Department = *op.Department
	}
	if op.Salary != nil {
		offer.Salary = *op.Salary
	}
	if op.Currency != nil {
		offer.Currency = *op.Currency
	}
	if op.StartDate != nil {
		offer.StartDate = op.StartDate
	}
	if op.ExpiryDate != nil {
		offer.ExpiryDate = op.ExpiryDate
	}
	if op.Notes != nil {
		offer.Notes = *op.Notes
	}
	return nil
}

// OnboardingPatch is a partial OnboardingPayload. Nil fields are left
// untouched; a non-nil checklist replaces the whole list.
type OnboardingPatch struct {
	CandidateID      *string         `json:"candidate_id,omitempty"`
	CandidateName    *string         `json:"candidate_name,omitempty"`
	JobRequisitionID *string         `json:"job_requisition_id,omitempty"`
	JobTitle         *string         `json:"job_title,omitempty"`
	Department       *string         `json:"department,omitempty"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	BuddyName        *string         `json:"buddy_name,omitempty"`
	Checklist        []ChecklistItem `json:"checklist,omitempty"`
}

func (op *OnboardingPatch) Kind() string { return KindOnboarding }

func (op *OnboardingPatch) Apply(p Payload) error {
	ob, ok := p.(*OnboardingPayload)
	if !ok {
		return fmt.Errorf("onboarding patch applied to %s payload", p.Kind())
	}
	if op.CandidateID != nil {
		ob.CandidateID = *op.CandidateID
	}
	if op.CandidateName != nil {
		ob.CandidateName = *op.CandidateName
	}
	if op.JobRequisitionID != nil {
		ob.JobRequisitionID = *op.JobRequisitionID
	}
	if op.JobTitle != nil {
		ob.JobTitle = *op.JobTitle
	}
	if op.Department != nil {
		ob.Department = *op.Department
	}
	if op.StartDate != nil {
		ob.StartDate = op.StartDate
	}
	if op.BuddyName != nil {
		ob.BuddyName = *op.BuddyName
	}
	if op.Checklist != nil {
		ob.Checklist = op.Checklist
	}
	return nil
}
