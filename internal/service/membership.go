package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/store"
)

// MembershipService tracks dues.
type MembershipService struct {
	store   store.Store
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewMembershipService creates a membership service.
func NewMembershipService(store store.Store, metrics Recorder, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateMembershipRequest opens a dues obligation.
type CreateMembershipRequest struct {
	MemberID    string    `json:"memberId" validate:"required"`
	DueDate     time.Time `json:"dueDate"`
	AmountCents int64     `json:"amountCents" validate:"gt=0"`
	Notes       string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// PayRequest records how dues were settled.
type PayRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=PIX CASH CARD TRANSFER BOLETO"`
	PaidAt        time.Time            `json:"paidAt"`
	Notes         string               `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ListMembershipsRequest filters dues. Members only ever see their own.
type ListMembershipsRequest struct {
	MemberID string
	Status   domain.MembershipStatus
}

// Create opens a PENDING dues obligation for an existing member.
func (s *MembershipService) Create(ctx context.Context, req CreateMembershipRequest) (*domain.Membership, error) {
	req.MemberID = strings.TrimSpace(req.MemberID)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.DueDate.IsZero() {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: "dueDate", Message: "is required"},
		})
	}

	if _, err := s.store.GetMember(ctx, req.MemberID); err != nil {
		return nil, notFound(err, "member", req.MemberID)
	}

	membershipID, err := id.Generate(id.PrefixMembership)
	if err != nil {
		return nil, fmt.Errorf("generate membership ID: %w", err)
	}

	ms := &domain.Membership{
		MemberID:    req.MemberID,
		DueDate:     req.DueDate.UTC(),
		AmountCents: req.AmountCents,
		Status:      domain.MembershipPending,
		Notes:       strings.TrimSpace(req.Notes),
	}
	ms.ID = membershipID
	ms.InitTimestamps(utcNow(s.now))

	if err := s.store.CreateMembership(ctx, ms); err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}

	s.logger.Info("membership created", "membership_id", ms.ID, "member_id", ms.MemberID)
	return ms, nil
}

// List returns dues ordered by due date. A member caller is pinned to their
// own records whatever filter they pass.
func (s *MembershipService) List(ctx context.Context, caller Caller, req ListMembershipsRequest) ([]*domain.Membership, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, domainerrors.Validationf("unknown membership status %q", req.Status)
	}

	filter := store.MembershipFilter{MemberID: req.MemberID, Status: req.Status}
	if !caller.IsAdmin() {
		if req.MemberID != "" && req.MemberID != caller.MemberID {
			return nil, domainerrors.Forbidden("members may only list their own dues")
		}
		filter.MemberID = caller.MemberID
	}

	list, err := s.store.ListMemberships(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return list, nil
}

// Get returns one dues record.
func (s *MembershipService) Get(ctx context.Context, caller Caller, membershipID string) (*domain.Membership, error) {
	ms, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, notFound(err, "membership", membershipID)
	}
	if !caller.CanActFor(ms.MemberID) {
		return nil, domainerrors.Forbidden("members may only view their own dues")
	}
	return ms, nil
}

// Pay settles PENDING dues. The payment fields are written once: paying
// again fails with ALREADY_PAID and leaves the first payment intact.
func (s *MembershipService) Pay(ctx context.Context, caller Caller, membershipID string, req PayRequest) (*domain.Membership, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.PaidAt.IsZero() {
		return nil, domainerrors.ValidationWithDetails("validation failed", []domainerrors.FieldError{
			{Field: "paidAt", Message: "is required"},
		})
	}

	ms, err := s.store.GetMembership(ctx, membershipID)
	if err != nil {
		return nil, notFound(err, "membership", membershipID)
	}
	if !caller.CanActFor(ms.MemberID) {
		return nil, domainerrors.Forbidden("members may only pay their own dues")
	}

	if err := ms.MarkPaid(req.PaymentMethod, req.PaidAt.UTC(), strings.TrimSpace(req.Notes), utcNow(s.now)); err != nil {
		return nil, domainerrors.AlreadyPaid("membership is already paid")
	}

	if err := s.store.MarkMembershipPaid(ctx, ms); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil, domainerrors.AlreadyPaid("membership is already paid")
		}
		return nil, fmt.Errorf("mark membership paid: %w", err)
	}

	s.metrics.PaymentRecorded(string(ms.PaymentMethod))
	s.logger.Info("membership paid",
		"membership_id", ms.ID,
		"member_id", ms.MemberID,
		"method", ms.PaymentMethod,
	)

	return ms, nil
}
