package service

import "errors"

var (
	// ErrRecordNotFound is returned when an operation references a missing record
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotDeletable is returned when deleting a record that left draft status
	ErrNotDeletable = errors.New("only draft records can be deleted")

	// ErrNotEditable is returned when an edit commit targets a non-draft record
	ErrNotEditable = errors.New("only draft records can be edited")

	// ErrKindMismatch is returned when an edit commit carries a payload of a
	// different kind than the stored record. A record never changes kind.
	ErrKindMismatch = errors.New("draft kind does not match record kind")

	// ErrEmptyPayload is returned when a draft is committed with no payload content
	ErrEmptyPayload = errors.New("draft payload is empty")

	// ErrCorruptRecord is returned when a loaded record violates its invariants,
	// such as an empty history. Should be unreachable.
	ErrCorruptRecord = errors.New("record state is corrupt")
)
