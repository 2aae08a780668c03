package domain

// IntentionStatus is the review state of an application to join the group.
type IntentionStatus string

// Intention lifecycle: PENDING is initial; APPROVED and REJECTED are terminal.
const (
	IntentionPending  IntentionStatus = "PENDING"
	IntentionApproved IntentionStatus = "APPROVED"
	IntentionRejected IntentionStatus = "REJECTED"
)

var intentionTransitions = transitionTable[IntentionStatus]{
	IntentionPending: {IntentionApproved, IntentionRejected},
}

// Valid reports whether s is a known status.
func (s IntentionStatus) Valid() bool {
	switch s {
	case IntentionPending, IntentionApproved, IntentionRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s IntentionStatus) IsTerminal() bool {
	return len(intentionTransitions[s]) == 0
}

// CanTransitionTo reports whether s may move to next.
func (s IntentionStatus) CanTransitionTo(next IntentionStatus) bool {
	return intentionTransitions.check("intention", s, next) == nil
}

// Intention is a prospective member's request to join, pending admin review.
// The email is a permanent unique key: once submitted, the same address can
// never apply again, whatever the outcome.
type Intention struct {
	Entity
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Company string          `json:"company,omitempty"`
	Message string          `json:"message,omitempty"`
	Status  IntentionStatus `json:"status"`
}

// TransitionTo validates and applies a status change.
// Returns an INVALID_STATE domain error for illegal moves and leaves the
// intention untouched.
func (i *Intention) TransitionTo(next IntentionStatus) error {
	if err := intentionTransitions.check("intention", i.Status, next); err != nil {
		return err
	}
	i.Status = next
	return nil
}
