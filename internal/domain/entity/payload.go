package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload holds the domain fields of a record. The engine reads and writes
// the payload as a unit; only the concrete types know their own fields.
type Payload interface {
	// Kind returns the record kind this payload belongs to.
	Kind() string

	// Empty reports whether no meaningful field has been set. Committing
	// an empty payload is a state-corruption guard failure.
	Empty() bool

	// CandidateRef returns the candidate name and job title used by the
	// free-text search projection.
	CandidateRef() (name, title string)

	// RequisitionID returns the job requisition the payload targets.
	RequisitionID() string
}

// OfferPayload carries the domain fields of an offer record.
type OfferPayload struct {
	CandidateID      string     `json:"candidate_id"`
	CandidateName    string     `json:"candidate_name"`
	JobRequisitionID string     `json:"job_requisition_id"`
	JobTitle         string     `json:"job_title"`
	Department       string     `json:"department"`
	Salary           float64    `json:"salary"`
	Currency         string     `json:"currency"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

func (p *OfferPayload) Kind() string { return KindOffer }

func (p *OfferPayload) Empty() bool {
	return p.CandidateID == "" && p.CandidateName == "" &&
		p.JobRequisitionID == "" && p.JobTitle == "" && p.Salary == 0
}

func (p *OfferPayload) CandidateRef() (string, string) {
	return p.CandidateName, p.JobTitle
}

func (p *OfferPayload) RequisitionID() string { return p.JobRequisitionID }

// ChecklistItem is a single onboarding task.
type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// OnboardingPayload carries the domain fields of an onboarding record.
type OnboardingPayload struct {
	CandidateID      string          `json:"candidate_id"`
	CandidateName    string          `json:"candidate_name"`
	JobRequisitionID string          `json:"job_requisition_id"`
	JobTitle         string          `json:"job_title"`
	Department       string          `json:"department"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	BuddyName        string          `json:"buddy_name,omitempty"`
	Checklist        []ChecklistItem `json:"checklist,omitempty"`
}

func (p *OnboardingPayload) Kind() string { return KindOnboarding }

func (p *OnboardingPayload) Empty() bool {
	return p.CandidateID == "" && p.CandidateName == "" &&
		p.JobRequisitionID == "" && p.JobTitle == "" && len(p.Checklist) == 0
}

func (p *OnboardingPayload) CandidateRef() (string, string) {
	return p.CandidateName, p.JobTitle
}

func (p *OnboardingPayload) RequisitionID() string { return p.JobRequisitionID }

// MarshalPayload serializes a payload for storage.
func MarshalPayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// UnmarshalPayload deserializes a stored payload using the record kind as
// the type discriminator.
func UnmarshalPayload(kind, data string) (Payload, error) {
	var p Payload
	switch kind {
	case KindOffer:
		p = &OfferPayload{}
	case KindOnboarding:
		p = &OnboardingPayload{}
	default:
		return nil, fmt.Errorf("unknown record kind: %s", kind)
	}
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", kind, err)
	}
	return p, nil
}

// ClonePayload returns a deep copy of a payload. Used when seeding a draft
// from an existing record so wizard edits never alias committed state.
func ClonePayload(p Payload) (Payload, error) {
	data, err := MarshalPayload(p)
	if err != nil {
		return nil, err
	}
	return UnmarshalPayload(p.Kind(), data)
}

// NewPayload returns an empty payload for the given kind.
func NewPayload(kind string) (Payload, error) {
	switch kind {
	case KindOffer:
		return &OfferPayload{}, nil
	case KindOnboarding:
		return &OnboardingPayload{}, nil
	default:
		return nil, fmt.Errorf("unknown record kind: %s", kind)
	}
}
