// Package wizard implements the stepwise workflow over a single in-flight
// draft: an ordered sequence of validated steps with forward/backward
// navigation. Completing the last step hands the draft to the record
// lifecycle service for commit.
package wizard

import (
	"fmt"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// ValidateFunc gates advancing past a step. A nil func means the step is
// always valid.
type ValidateFunc func(d *entity.Draft) error

// Step is one descriptor in a workflow definition.
type Step struct {
	Label    string
	Validate ValidateFunc
}

// Definition is the static, ordered list of steps for one record kind.
type Definition struct {
	Kind  string
	Steps []Step
}

// Len returns the number of steps.
func (def *Definition) Len() int {
	return len(def.Steps)
}

// OfferDefinition returns the offer wizard: Setup, Letter, Approval, Review.
func OfferDefinition() *Definition {
	return &Definition{
		Kind: entity.KindOffer,
		Steps: []Step{
			{
				Label: "Setup",
				Validate: func(d *entity.Draft) error {
					offer, ok := d.Payload.(*entity.OfferPayload)
					if !ok {
						return fmt.Errorf("offer wizard requires an offer payload")
					}
					if offer.CandidateID == "" {
						return fmt.Errorf("candidate is required")
					}
					if offer.JobRequisitionID == "" {
						return fmt.Errorf("job requisition is required")
					}
					return nil
				},
			},
			{
				Label: "Letter",
				Validate: func(d *entity.Draft) error {
					offer := d.Payload.(*entity.OfferPayload)
					if offer.JobTitle == "" {
						return fmt.Errorf("job title is required")
					}
					if offer.Salary <= 0 {
						return fmt.Errorf("salary must be positive")
					}
					return nil
				},
			},
			{Label: "Approval"},
			{Label: "Review"},
		},
	}
}

// OnboardingDefinition returns the onboarding wizard: Setup, Checklist, Review.
func OnboardingDefinition() *Definition {
	return &Definition{
		Kind: entity.KindOnboarding,
		Steps: []Step{
			{
				Label: "Setup",
				Validate: func(d *entity.Draft) error {
					ob, ok := d.Payload.(*entity.OnboardingPayload)
					if !ok {
						return fmt.Errorf("onboarding wizard requires an onboarding payload")
					}
					if ob.CandidateID == "" {
						return fmt.Errorf("candidate is required")
					}
					if ob.StartDate == nil {
						return fmt.Errorf("start date is required")
					}
					return nil
				},
			},
			{
				Label: "Checklist",
				Validate: func(d *entity.Draft) error {
					ob := d.Payload.(*entity.OnboardingPayload)
					if len(ob.Checklist) == 0 {
						return fmt.Errorf("at least one checklist item is required")
					}
					return nil
				},
			},
			{Label: "Review"},
		},
	}
}

// DefinitionFor returns the wizard definition for a record kind.
func DefinitionFor(kind string) (*Definition, error) {
	switch kind {
	case entity.KindOffer:
		return OfferDefinition(), nil
	case entity.KindOnboarding:
		return OnboardingDefinition(), nil
	default:
		return nil, fmt.Errorf("unknown record kind: %s", kind)
	}
}
