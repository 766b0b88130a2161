package entity

import "time"

// Record represents a committed, identified work item (an offer or an
// onboarding instance). Records are created by committing a Draft and are
// mutated only through status transitions and field edits, each of which
// appends exactly one history entry.
type Record struct {
	ID            string         `json:"id"`
	Kind          string         `json:"kind"`
	Status        string         `json:"status"`
	Payload       Payload        `json:"payload"`
	ApprovalChain []Approver     `json:"approval_chain"`
	History       []HistoryEntry `json:"history"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsDraft reports whether the record is still in its draft status. Only
// draft records may be deleted or edited wholesale.
func (r *Record) IsDraft() bool {
	return r.Status == StatusDraft
}

// AppendHistory appends an entry to the record's audit trail. History is
// append-only; existing entries are never touched.
func (r *Record) AppendHistory(entry HistoryEntry) {
	r.History = append(r.History, entry)
}
