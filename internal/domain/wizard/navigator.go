package wizard

import (
	"errors"
	"fmt"

	"github.com/talentops/hireflow/internal/domain/entity"
)

var (
	// ErrStepInvalid is returned when the active step's validation blocks advancing
	ErrStepInvalid = errors.New("current step is not valid")

	// ErrStepForbidden is returned when a jump would skip ahead of the current step
	ErrStepForbidden = errors.New("cannot jump forward past the current step")

	// ErrStepOutOfRange is returned when a jump targets a step below 1
	ErrStepOutOfRange = errors.New("step out of range")
)

// ValidateStep evaluates the active step's validity predicate against the
// draft. Pure; no side effects.
func ValidateStep(d *entity.Draft, def *Definition) error {
	if d.CurrentStep < 1 || d.CurrentStep > def.Len() {
		return fmt.Errorf("step %d out of range [1, %d]", d.CurrentStep, def.Len())
	}
	step := def.Steps[d.CurrentStep-1]
	if step.Validate == nil {
		return nil
	}
	return step.Validate(d)
}

// CanAdvance reports whether the draft passes the active step's validation.
func CanAdvance(d *entity.Draft, def *Definition) bool {
	return ValidateStep(d, def) == nil
}

// Advance moves the draft to the next step when validation passes. It
// returns done=true when the draft is already on the last step, signalling
// that the caller should commit. A failed validation leaves the step
// unchanged and returns ErrStepInvalid.
func Advance(d *entity.Draft, def *Definition) (done bool, err error) {
	if err := ValidateStep(d, def); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStepInvalid, err)
	}
	if d.CurrentStep >= def.Len() {
		return true, nil
	}
	d.CurrentStep++
	return false, nil
}

// Retreat moves the draft one step back. No-op at step 1.
func Retreat(d *entity.Draft) {
	if d.CurrentStep > 1 {
		d.CurrentStep--
	}
}

// JumpTo moves the draft to an earlier (or the current) step for review.
// Jumping forward is forbidden so validation cannot be skipped.
func JumpTo(d *entity.Draft, step int) error {
	if step < 1 {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, step)
	}
	if step > d.CurrentStep {
		return ErrStepForbidden
	}
	d.CurrentStep = step
	return nil
}

// Progress returns the display fraction currentStep/N.
func Progress(d *entity.Draft, def *Definition) float64 {
	if def.Len() == 0 {
		return 0
	}
	return float64(d.CurrentStep) / float64(def.Len())
}
