package entity

import "time"

// HistoryEntry represents one entry in a record's audit trail. Entries are
// never mutated or reordered after append.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	RecordID  string    `json:"record_id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
