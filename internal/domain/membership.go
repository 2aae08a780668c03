package domain

import "time"

// MembershipStatus is the payment state of a dues obligation.
type MembershipStatus string

// Dues lifecycle: PENDING → PAID, and PAID is terminal.
const (
	MembershipPending MembershipStatus = "PENDING"
	MembershipPaid    MembershipStatus = "PAID"
)

var membershipTransitions = transitionTable[MembershipStatus]{
	MembershipPending: {MembershipPaid},
}

// Valid reports whether s is a known status.
func (s MembershipStatus) Valid() bool {
	return s == MembershipPending || s == MembershipPaid
}

// PaymentMethod is how a dues payment was settled.
type PaymentMethod string

// Accepted payment methods.
const (
	PaymentPix      PaymentMethod = "PIX"
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentBoleto   PaymentMethod = "BOLETO"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCash, PaymentCard, PaymentTransfer, PaymentBoleto:
		return true
	}
	return false
}

// Membership is a dues obligation for one member.
type Membership struct {
	Entity
	MemberID      string           `json:"memberId"`
	DueDate       time.Time        `json:"dueDate"`
	AmountCents   int64            `json:"amountCents"`
	Status        MembershipStatus `json:"status"`
	PaidAt        *time.Time       `json:"paidAt,omitempty"`
	PaymentMethod PaymentMethod    `json:"paymentMethod,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// IsPaid reports whether the dues have been settled.
func (m *Membership) IsPaid() bool {
	return m.Status == MembershipPaid
}

// MarkPaid moves the obligation to PAID and records the payment.
// The payment fields are write-once: a second call fails and changes nothing.
func (m *Membership) MarkPaid(method PaymentMethod, paidAt time.Time, notes string, now time.Time) error {
	if err := membershipTransitions.check("membership", m.Status, MembershipPaid); err != nil {
		return err
	}
	m.Status = MembershipPaid
	m.PaymentMethod = method
	m.PaidAt = &paidAt
	m.Notes = notes
	m.Touch(now)
	return nil
}
