package domain

import "time"

// MemberStatus is the standing of a member in the group.
type MemberStatus string

// Member lifecycle. INVITED is set on approval and left only through
// registration; INACTIVE and SUSPENDED are administrative overrides.
const (
	MemberInvited   MemberStatus = "INVITED"
	MemberActive    MemberStatus = "ACTIVE"
	MemberInactive  MemberStatus = "INACTIVE"
	MemberSuspended MemberStatus = "SUSPENDED"
)

var memberTransitions = transitionTable[MemberStatus]{
	// Re-approving an existing INVITED row re-issues the invite.
	MemberInvited:   {MemberInvited, MemberActive},
	MemberActive:    {MemberInactive, MemberSuspended},
	MemberInactive:  {MemberInvited, MemberActive, MemberSuspended},
	MemberSuspended: {MemberActive, MemberInactive},
}

// Valid reports whether s is a known status.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberInvited, MemberActive, MemberInactive, MemberSuspended:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to next.
func (s MemberStatus) CanTransitionTo(next MemberStatus) bool {
	return memberTransitions.check("member", s, next) == nil
}

// IsAdministrative reports whether s is one an admin may set directly.
// INVITED → ACTIVE is reserved for registration.
func (s MemberStatus) IsAdministrative() bool {
	return s == MemberActive || s == MemberInactive || s == MemberSuspended
}

// MemberProfile holds the optional, member-editable fields.
type MemberProfile struct {
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
	Segment  string `json:"segment,omitempty"` // Business segment, e.g. "Legal" or "Construction"
	Bio      string `json:"bio,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// ProfileUpdate carries a partial profile. Nil fields are left unchanged.
type ProfileUpdate struct {
	Phone    *string
	Company  *string
	Position *string
	Segment  *string
	Bio      *string
	LinkedIn *string
	Website  *string
}

// Member is a person belonging to the group, from invitation onwards.
type Member struct {
	Entity
	MemberProfile
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Status       MemberStatus `json:"status"`
	InviteToken  string       `json:"-"`
	TokenExpiry  *time.Time   `json:"tokenExpiry,omitempty"`
	IntentionID  string       `json:"intentionId,omitempty"`
	PasswordHash string       `json:"-"`
}

// TransitionTo validates and applies a status change.
func (m *Member) TransitionTo(next MemberStatus) error {
	if err := memberTransitions.check("member", m.Status, next); err != nil {
		return err
	}
	m.Status = next
	return nil
}

// IsActive reports whether the member is in good standing.
func (m *Member) IsActive() bool {
	return m.Status == MemberActive
}

// HasPassword reports whether the member can log in with a password.
func (m *Member) HasPassword() bool {
	return m.PasswordHash != ""
}

// ApplyProfile merges the non-nil fields of u into the member's profile.
func (m *Member) ApplyProfile(u ProfileUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.Phone, u.Phone)
	set(&m.Company, u.Company)
	set(&m.Position, u.Position)
	set(&m.Segment, u.Segment)
	set(&m.Bio, u.Bio)
	set(&m.LinkedIn, u.LinkedIn)
	set(&m.Website, u.Website)
}
