package wizard

import (
	"fmt"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// NewDraft creates a fresh draft for the given kind at step 1. When seed is
// non-nil the draft is pre-populated from the existing record (edit flow);
// the seed's payload and chain are copied so wizard edits stay local until
// commit.
func NewDraft(kind string, seed *entity.Record) (*entity.Draft, error) {
	draft := &entity.Draft{
		Kind:        kind,
		CurrentStep: 1,
	}

	if seed == nil {
		payload, err := entity.NewPayload(kind)
		if err != nil {
			return nil, err
		}
		draft.Payload = payload
		return draft, nil
	}

	if seed.Kind != kind {
		return nil, fmt.Errorf("cannot seed %s draft from %s record", kind, seed.Kind)
	}

	payload, err := entity.ClonePayload(seed.Payload)
	if err != nil {
		return nil, err
	}

	draft.RecordID = seed.ID
	draft.Payload = payload
	draft.ApprovalChain = append([]entity.Approver{}, seed.ApprovalChain...)
	return draft, nil
}

// ApplyPatch shallow-merges a partial update into the draft's payload and
// marks it dirty. No validation happens here; a malformed patch simply
// produces a draft that step validation will reject.
func ApplyPatch(d *entity.Draft, patch entity.Patch) error {
	if patch.Kind() != d.Kind {
		return fmt.Errorf("cannot apply %s patch to %s draft", patch.Kind(), d.Kind)
	}
	if err := patch.Apply(d.Payload); err != nil {
		return err
	}
	d.Dirty = true
	return nil
}

// Reset discards the draft's contents, returning it to the empty step-1
// state. Unconditional; no partial-commit states exist.
func Reset(d *entity.Draft) error {
	payload, err := entity.NewPayload(d.Kind)
	if err != nil {
		return err
	}
	d.RecordID = ""
	d.Payload = payload
	d.ApprovalChain = nil
	d.CurrentStep = 1
	d.Dirty = false
	return nil
}
