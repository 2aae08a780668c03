// Package store defines persistence for the group server.
package store

import (
	"context"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
)

// Store defines all persistence operations. Implementations enforce email and
// invite token uniqueness and make state transitions conditional on the
// current status, so concurrent writers cannot both succeed.
type Store interface {
	Close() error
	Ping(ctx context.Context) error

	// Intentions
	CreateIntention(ctx context.Context, intention *domain.Intention) error
	GetIntention(ctx context.Context, id string) (*domain.Intention, error)
	GetIntentionByEmail(ctx context.Context, email string) (*domain.Intention, error)
	ListIntentions(ctx context.Context, filter IntentionFilter) ([]*domain.Intention, error)
	// ApproveIntention moves the intention from PENDING to APPROVED and
	// creates (or re-invites) the member in one transaction.
	ApproveIntention(ctx context.Context, intention *domain.Intention, member *domain.Member) (*domain.Member, error)
	// RejectIntention moves the intention from PENDING to REJECTED.
	RejectIntention(ctx context.Context, intention *domain.Intention) error

	// Members
	CreateMember(ctx context.Context, member *domain.Member) error
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetMemberByInviteToken(ctx context.Context, token string) (*domain.Member, error)
	ListMembers(ctx context.Context, filter MemberFilter) ([]*domain.Member, error)
	// CompleteRegistration persists profile, password and ACTIVE status for a
	// member that is still INVITED.
	CompleteRegistration(ctx context.Context, member *domain.Member) error
	// UpdateMemberStatus sets member.Status if the stored status is still from.
	UpdateMemberStatus(ctx context.Context, member *domain.Member, from domain.MemberStatus) error

	// Meetings and attendance
	CreateMeeting(ctx context.Context, meeting *domain.Meeting) error
	GetMeeting(ctx context.Context, id string) (*domain.Meeting, error)
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]*domain.Meeting, error)
	UpsertAttendance(ctx context.Context, attendance *domain.Attendance) (*domain.Attendance, error)
	ListAttendances(ctx context.Context, meetingID string) ([]*domain.Attendance, error)

	// Memberships (dues)
	CreateMembership(ctx context.Context, membership *domain.Membership) error
	GetMembership(ctx context.Context, id string) (*domain.Membership, error)
	ListMemberships(ctx context.Context, filter MembershipFilter) ([]*domain.Membership, error)
	// MarkMembershipPaid writes the payment fields if the row is still PENDING.
	MarkMembershipPaid(ctx context.Context, membership *domain.Membership) error

	// Notices
	CreateNotice(ctx context.Context, notice *domain.Notice) error
	GetNotice(ctx context.Context, id string) (*domain.Notice, error)
	ListNotices(ctx context.Context, includeInactive bool) ([]*domain.Notice, error)
	DeactivateNotice(ctx context.Context, id string, at time.Time) error

	// Thanks
	CreateThank(ctx context.Context, thank *domain.Thank) error
	ListThanks(ctx context.Context, filter ThankFilter) ([]*domain.Thank, error)

	// Email log
	CreateEmailLog(ctx context.Context, log *domain.EmailLog) error
	ListEmailLogs(ctx context.Context, filter EmailFilter) ([]*domain.EmailLog, error)

	// Dashboard
	GroupCounts(ctx context.Context, window MonthWindow) (*domain.GroupCounts, error)
}

// IntentionFilter narrows ListIntentions. Zero values match everything.
type IntentionFilter struct {
	Status domain.IntentionStatus
}

// MemberFilter narrows ListMembers.
type MemberFilter struct {
	Status domain.MemberStatus
	IDs    []string
}

// MeetingFilter narrows ListMeetings.
type MeetingFilter struct {
	From *time.Time
	To   *time.Time
}

// MembershipFilter narrows ListMemberships.
type MembershipFilter struct {
	MemberID string
	Status   domain.MembershipStatus
}

// ThankFilter matches thanks sent or received by MemberID.
type ThankFilter struct {
	MemberID string
}

// EmailFilter narrows ListEmailLogs.
type EmailFilter struct {
	To   string
	Kind domain.EmailKind
}

// MonthWindow bounds the two calendar months compared by the dashboard.
// Last is the start of the previous month, Current the start of this one.
type MonthWindow struct {
	Last    time.Time
	Current time.Time
}

// MonthWindowAt returns the UTC calendar month window containing now.
func MonthWindowAt(now time.Time) MonthWindow {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthWindow{
		Last:    current.AddDate(0, -1, 0),
		Current: current,
	}
}
