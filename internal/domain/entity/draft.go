package entity

// Draft is the single in-flight record under construction by a wizard
// session. It is an optional-everything projection of Record: no history
// yet, and no ID unless the draft was seeded from an existing record for
// an edit flow.
type Draft struct {
	RecordID      string     `json:"record_id,omitempty"`
	Kind          string     `json:"kind"`
	Payload       Payload    `json:"payload"`
	ApprovalChain []Approver `json:"approval_chain"`
	CurrentStep   int        `json:"current_step"`
	Dirty         bool       `json:"dirty"`
}

// Editing reports whether the draft was seeded from an existing record.
func (d *Draft) Editing() bool {
	return d.RecordID != ""
}
