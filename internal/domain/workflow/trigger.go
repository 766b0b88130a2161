package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSubmit  Trigger = "SUBMIT"
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
	TriggerSend    Trigger = "SEND"
	TriggerSign    Trigger = "SIGN"
	TriggerDecline Trigger = "DECLINE"
	TriggerExpire  Trigger = "EXPIRE"
	TriggerRevise  Trigger = "REVISE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
