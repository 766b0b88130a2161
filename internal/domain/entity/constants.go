package entity

// Status constants for Record
const (
	StatusDraft           = "DRAFT"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusSent            = "SENT"
	StatusSigned          = "SIGNED"
	StatusDeclined        = "DECLINED"
	StatusExpired         = "EXPIRED"
)

// Record kind constants
const (
	KindOffer      = "OFFER"
	KindOnboarding = "ONBOARDING"
)

// Approver status constants
const (
	ApproverPending  = "PENDING"
	ApproverApproved = "APPROVED"
	ApproverRejected = "REJECTED"
)

// History action constants
const (
	ActionCreated         = "created"
	ActionEdited          = "edited"
	ActionApproved        = "approved"
	ActionRejected        = "rejected"
	ActionSent            = "sent"
	ActionSigned          = "signed"
	ActionDeclined        = "declined"
	ActionExpired         = "expired"
	ActionLetterGenerated = "letter_generated"
)

// ActorSystem is the actor recorded for mutations not initiated by a user,
// such as the expiry sweeper and the document worker.
const ActorSystem = "system"

// ActionForStatus derives the history action recorded for a status
// transition. Unknown statuses fall back to a plain edit entry.
func ActionForStatus(status string) string {
	switch status {
	case StatusApproved:
		return ActionApproved
	case StatusRejected:
		return ActionRejected
	case StatusSent:
		return ActionSent
	case StatusSigned:
		return ActionSigned
	case StatusDeclined:
		return ActionDeclined
	case StatusExpired:
		return ActionExpired
	default:
		return ActionEdited
	}
}
