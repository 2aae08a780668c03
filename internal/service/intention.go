package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/id"
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// IntentionService handles the applicant lifecycle: public submission,
// admin approval or rejection, and status lookups.
type IntentionService struct {
	store     store.Store
	tokens    *auth.InviteTokens
	notifier  Notifier
	directory Directory
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewIntentionService creates an intention service.
func NewIntentionService(
	store store.Store,
	tokens *auth.InviteTokens,
	notifier Notifier,
	directory Directory,
	metrics Recorder,
	logger *slog.Logger,
) *IntentionService {
	return &IntentionService{
		store:     store,
		tokens:    tokens,
		notifier:  notifier,
		directory: directory,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitIntentionRequest is a public application to join the group.
type SubmitIntentionRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Company string `json:"company" validate:"omitempty,max=120"`
	Message string `json:"message" validate:"omitempty,max=2000"`
}

// IntentionStatusView is what an applicant sees about their own application.
type IntentionStatusView struct {
	Status    domain.IntentionStatus `json:"status"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// ApprovalResult is returned after approving an intention.
type ApprovalResult struct {
	Intention *domain.Intention `json:"intention"`
	Member    *domain.Member    `json:"member"`
	InviteURL string            `json:"inviteUrl"`
}

// Submit records a new PENDING intention. An email that already has an
// intention, in any status, is a conflict.
func (s *IntentionService) Submit(ctx context.Context, req SubmitIntentionRequest) (*domain.Intention, error) {
	req.Email = normalize.Email(req.Email)
	req.Name = normalize.Name(req.Name)
	req.Phone = normalize.Phone(req.Phone)
	req.Company = normalize.Text(req.Company)
	req.Message = strings.TrimSpace(req.Message)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetIntentionByEmail(ctx, req.Email); err == nil {
		return nil, domainerrors.Conflict("an intention for this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing intention: %w", err)
	}

	intentionID, err := id.Generate(id.PrefixIntention)
	if err != nil {
		return nil, fmt.Errorf("generate intention ID: %w", err)
	}

	in := &domain.Intention{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
		Status:  domain.IntentionPending,
	}
	in.ID = intentionID
	in.InitTimestamps(utcNow(s.now))

	if err := s.store.CreateIntention(ctx, in); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("an intention for this email already exists")
		}
		return nil, fmt.Errorf("create intention: %w", err)
	}

	s.metrics.IntentionSubmitted()
	s.logger.Info("intention submitted", "intention_id", in.ID)

	return in, nil
}

// Approve moves a PENDING intention to APPROVED, invites the applicant as a
// member with a fresh token, and records the invite email.
func (s *IntentionService) Approve(ctx context.Context, intentionID string) (*ApprovalResult, error) {
	in, err := s.store.GetIntention(ctx, intentionID)
	if err != nil {
		return nil, notFound(err, "intention", intentionID)
	}

	if err := in.TransitionTo(domain.IntentionApproved); err != nil {
		return nil, err
	}

	existing, err := s.store.GetMemberByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.Status != domain.MemberInvited && existing.Status != domain.MemberInactive {
			return nil, domainerrors.InvalidStatef("a %s member already uses %s", strings.ToLower(string(existing.Status)), in.Email)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check existing member: %w", err)
	}

	token, err := s.tokens.GenerateInviteToken()
	if err != nil {
		return nil, err
	}
	expiry := s.tokens.GenerateTokenExpiry()

	memberID, err := id.Generate(id.PrefixMember)
	if err != nil {
		return nil, fmt.Errorf("generate member ID: %w", err)
	}

	now := utcNow(s.now)
	in.Touch(now)

	m := &domain.Member{
		Name:        in.Name,
		Email:       in.Email,
		Status:      domain.MemberInvited,
		InviteToken: token,
		TokenExpiry: &expiry,
		IntentionID: in.ID,
		MemberProfile: domain.MemberProfile{
			Phone:   in.Phone,
			Company: in.Company,
		},
	}
	m.ID = memberID
	m.InitTimestamps(now)

	member, err := s.store.ApproveIntention(ctx, in, m)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrStaleState):
			return nil, domainerrors.InvalidStatef("intention %s is no longer pending", in.ID)
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.Conflict("invite token collision, retry the approval")
		}
		return nil, fmt.Errorf("approve intention: %w", err)
	}

	s.metrics.IntentionApproved()
	s.logger.Info("intention approved",
		"intention_id", in.ID,
		"member_id", member.ID,
		"token_expiry", expiry,
	)

	if err := s.directory.Index(member); err != nil {
		s.logger.Error("index approved member", "member_id", member.ID, "error", err)
	}

	// The approval is committed; a failed email is logged, not returned.
	if entry, err := s.notifier.Invite(ctx, member); err != nil {
		s.logger.Error("record invite email", "member_id", member.ID, "error", err)
	} else {
		s.metrics.EmailLogged(string(entry.Kind))
	}

	return &ApprovalResult{
		Intention: in,
		Member:    member,
		InviteURL: s.notifier.RegistrationURL(member.InviteToken),
	}, nil
}

// Reject moves a PENDING intention to REJECTED and records the rejection
// email. reason is optional and only appears in the email.
func (s *IntentionService) Reject(ctx context.Context, intentionID, reason string) (*domain.Intention, error) {
	in, err := s.store.GetIntention(ctx, intentionID)
	if err != nil {
		return nil, notFound(err, "intention", intentionID)
	}

	if err := in.TransitionTo(domain.IntentionRejected); err != nil {
		return nil, err
	}
	in.Touch(utcNow(s.now))

	if err := s.store.RejectIntention(ctx, in); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil, domainerrors.InvalidStatef("intention %s is no longer pending", in.ID)
		}
		return nil, fmt.Errorf("reject intention: %w", err)
	}

	s.metrics.IntentionRejected()
	s.logger.Info("intention rejected", "intention_id", in.ID, "with_reason", reason != "")

	if entry, err := s.notifier.Rejection(ctx, in, reason); err != nil {
		s.logger.Error("record rejection email", "intention_id", in.ID, "error", err)
	} else {
		s.metrics.EmailLogged(string(entry.Kind))
	}

	return in, nil
}

// Status returns the public status of the application for email.
func (s *IntentionService) Status(ctx context.Context, email string) (*IntentionStatusView, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, domainerrors.ValidationWithDetails("email is required", []domainerrors.FieldError{
			{Field: "email", Message: "is required"},
		})
	}

	in, err := s.store.GetIntentionByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("no intention found for this email")
		}
		return nil, fmt.Errorf("get intention: %w", err)
	}

	return &IntentionStatusView{
		Status:    in.Status,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}, nil
}

// List returns intentions newest first, optionally filtered by status.
func (s *IntentionService) List(ctx context.Context, status domain.IntentionStatus) ([]*domain.Intention, error) {
	if status != "" && !status.Valid() {
		return nil, domainerrors.Validationf("unknown intention status %q", status)
	}
	list, err := s.store.ListIntentions(ctx, store.IntentionFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("list intentions: %w", err)
	}
	return list, nil
}

// Get returns a single intention.
func (s *IntentionService) Get(ctx context.Context, intentionID string) (*domain.Intention, error) {
	in, err := s.store.GetIntention(ctx, intentionID)
	if err != nil {
		return nil, notFound(err, "intention", intentionID)
	}
	return in, nil
}
