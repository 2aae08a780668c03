// Package service implements the membership workflows on top of the store:
// intention intake and review, invite redemption, meetings, dues, the
// dashboard and the group's notice board.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/store"
	"github.com/nexogroup/nexo-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// Notifier renders and records outbound notifications.
type Notifier interface {
	Invite(ctx context.Context, m *domain.Member) (*domain.EmailLog, error)
	Rejection(ctx context.Context, in *domain.Intention, reason string) (*domain.EmailLog, error)
	Welcome(ctx context.Context, m *domain.Member) (*domain.EmailLog, error)
	RegistrationURL(token string) string
}

// Directory is the member search index.
type Directory interface {
	Index(m *domain.Member) error
	Search(ctx context.Context, q search.Query) ([]search.Hit, error)
}

// Recorder receives workflow events for metrics.
type Recorder interface {
	IntentionSubmitted()
	IntentionApproved()
	IntentionRejected()
	MemberRegistered()
	CheckedIn()
	PaymentRecorded(method string)
	EmailLogged(kind string)
}

// Caller identifies who is making a request.
type Caller struct {
	Role     domain.Role
	MemberID string
}

// Admin is the caller used by the admin key and the CLI.
func Admin() Caller { return Caller{Role: domain.RoleAdmin} }

// MemberCaller is a signed-in member.
func MemberCaller(memberID string) Caller {
	return Caller{Role: domain.RoleMember, MemberID: memberID}
}

// IsAdmin reports whether the caller holds the admin key.
func (c Caller) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// CanActFor reports whether the caller may read or act on memberID's records.
func (c Caller) CanActFor(memberID string) bool {
	return c.IsAdmin() || (c.Role == domain.RoleMember && c.MemberID != "" && c.MemberID == memberID)
}

// notFound maps store.ErrNotFound to a domain NotFound error, wrapping any
// other failure with context.
func notFound(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s %s not found", what, id)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

func utcNow(clock func() time.Time) time.Time {
	return clock().UTC()
}
