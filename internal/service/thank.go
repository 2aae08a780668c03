package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/store"
)

// ThankService records thanks between members.
type ThankService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewThankService creates a thank service.
func NewThankService(store store.Store, logger *slog.Logger) *ThankService {
	return &ThankService{store: store, logger: logger, now: time.Now}
}

// CreateThankRequest thanks another member. FromMemberID is only honoured
// for admins; members always thank as themselves.
type CreateThankRequest struct {
	FromMemberID       string `json:"fromMemberId,omitempty"`
	ToMemberID         string `json:"toMemberId" validate:"required"`
	Message            string `json:"message" validate:"required,max=2000"`
	BusinessValueCents int64  `json:"businessValueCents" validate:"gte=0"`
}

// Create records a thank between two ACTIVE members.
func (s *ThankService) Create(ctx context.Context, caller Caller, req CreateThankRequest) (*domain.Thank, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.ToMemberID = strings.TrimSpace(req.ToMemberID)
	if !caller.IsAdmin() {
		req.FromMemberID = caller.MemberID
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.FromMemberID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: "fromMemberId", Message: "is required"},
		})
	}
	if req.FromMemberID == req.ToMemberID {
		return nil, domainerrors.ValidationWithDetails("members cannot thank themselves", []domainerrors.FieldError{
			{Field: "toMemberId", Message: "must be a different member"},
		})
	}

	for _, memberID := range []string{req.FromMemberID, req.ToMemberID} {
		m, err := s.store.GetMember(ctx, memberID)
		if err != nil {
			return nil, notFound(err, "member", memberID)
		}
		if !m.IsActive() {
			return nil, domainerrors.InvalidStatef("member %s is not active", memberID)
		}
	}

	thankID, err := id.Generate(id.PrefixThank)
	if err != nil {
		return nil, fmt.Errorf("generate thank ID: %w", err)
	}

	th := &domain.Thank{
		ID:                 thankID,
		FromMemberID:       req.FromMemberID,
		ToMemberID:         req.ToMemberID,
		Message:            req.Message,
		BusinessValueCents: req.BusinessValueCents,
		CreatedAt:          utcNow(s.now),
	}

	if err := s.store.CreateThank(ctx, th); err != nil {
		return nil, fmt.Errorf("create thank: %w", err)
	}

	s.logger.Info("thank recorded",
		"thank_id", th.ID,
		"from", th.FromMemberID,
		"to", th.ToMemberID,
	)
	return th, nil
}

// List returns thanks newest first, optionally those sent or received by
// memberID.
func (s *ThankService) List(ctx context.Context, memberID string) ([]*domain.Thank, error) {
	list, err := s.store.ListThanks(ctx, store.ThankFilter{MemberID: strings.TrimSpace(memberID)})
	if err != nil {
		return nil, fmt.Errorf("list thanks: %w", err)
	}
	return list, nil
}
