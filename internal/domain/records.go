package domain

import "time"

// NoticeType classifies a notice on the group board.
type NoticeType string

// Notice types.
const (
	NoticeGeneral NoticeType = "GENERAL"
	NoticeMeeting NoticeType = "MEETING"
	NoticeEvent   NoticeType = "EVENT"
	NoticeUrgent  NoticeType = "URGENT"
)

// Valid reports whether t is a known notice type.
func (t NoticeType) Valid() bool {
	switch t {
	case NoticeGeneral, NoticeMeeting, NoticeEvent, NoticeUrgent:
		return true
	}
	return false
}

// Notice is an announcement posted by the group administration.
type Notice struct {
	Entity
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Type       NoticeType `json:"type"`
	AuthorName string     `json:"authorName,omitempty"`
	Active     bool       `json:"active"`
}

// Thank is a public acknowledgement from one member to another, usually
// for business referred between them.
type Thank struct {
	ID                 string    `json:"id"`
	FromMemberID       string    `json:"fromMemberId"`
	ToMemberID         string    `json:"toMemberId"`
	Message            string    `json:"message"`
	BusinessValueCents int64     `json:"businessValueCents"`
	CreatedAt          time.Time `json:"createdAt"`
}

// EmailKind identifies which notification template produced a message.
type EmailKind string

// Notification kinds.
const (
	EmailInvite    EmailKind = "INVITE"
	EmailRejection EmailKind = "REJECTION"
	EmailWelcome   EmailKind = "WELCOME"
)

// EmailStatusLogged is the only delivery status: messages are recorded, not sent.
const EmailStatusLogged = "LOGGED"

// EmailLog is a rendered outbound notification kept for audit.
type EmailLog struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTMLBody  string    `json:"htmlBody"`
	TextBody  string    `json:"textBody"`
	Kind      EmailKind `json:"kind"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Role is the caller's authority for a request.
type Role string

// Roles, from least to most privileged.
const (
	RoleGuest  Role = "GUEST"
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)
