package entity

import "time"

// Approver is one link in a record's approval chain. List position implies
// review order for display; status derivation does not depend on it.
type Approver struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Position  string     `json:"position"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

// Decided reports whether the approver has moved past the pending state.
func (a *Approver) Decided() bool {
	return a.Status != ApproverPending
}
