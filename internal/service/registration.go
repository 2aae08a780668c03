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
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// RegistrationService redeems invite tokens.
type RegistrationService struct {
	store     store.Store
	tokens    *auth.InviteTokens
	notifier  Notifier
	directory Directory
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(
	store store.Store,
	tokens *auth.InviteTokens,
	notifier Notifier,
	directory Directory,
	metrics Recorder,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:     store,
		tokens:    tokens,
		notifier:  notifier,
		directory: directory,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRequest redeems an invite. Nil profile fields keep what the
// intention already supplied.
type RegisterRequest struct {
	Token    string  `json:"token" validate:"required"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=120"`
	Position *string `json:"position,omitempty" validate:"omitempty,max=120"`
	Segment  *string `json:"segment,omitempty" validate:"omitempty,max=80"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	LinkedIn *string `json:"linkedin,omitempty" validate:"omitempty,url,max=255"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024"`
}

// MemberPreview is the part of an invited member shown before registration.
type MemberPreview struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
}

// TokenCheck reports whether an invite token can be redeemed.
type TokenCheck struct {
	Valid  bool              `json:"valid"`
	Error  domainerrors.Code `json:"error,omitempty"`
	Member *MemberPreview    `json:"member,omitempty"`
}

// Redeem completes registration for the member holding token.
// Checks run in order: unknown token, expired token, already registered.
func (s *RegistrationService) Redeem(ctx context.Context, req RegisterRequest) (*domain.Member, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	m, err := s.redeemable(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	m.ApplyProfile(profileUpdate(req))

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		m.PasswordHash = hash
	}

	if err := m.TransitionTo(domain.MemberActive); err != nil {
		return nil, err
	}
	m.Touch(utcNow(s.now))

	if err := s.store.CompleteRegistration(ctx, m); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil, domainerrors.AlreadyRegistered("member is already registered")
		}
		return nil, fmt.Errorf("complete registration: %w", err)
	}

	s.metrics.MemberRegistered()
	s.logger.Info("member registered", "member_id", m.ID, "with_password", m.HasPassword())

	if err := s.directory.Index(m); err != nil {
		s.logger.Error("index registered member", "member_id", m.ID, "error", err)
	}

	if entry, err := s.notifier.Welcome(ctx, m); err != nil {
		s.logger.Error("record welcome email", "member_id", m.ID, "error", err)
	} else {
		s.metrics.EmailLogged(string(entry.Kind))
	}

	return m, nil
}

// ValidateToken reports whether token could be redeemed right now. Domain
// failures are reported in the result, never as an error.
func (s *RegistrationService) ValidateToken(ctx context.Context, token string) (*TokenCheck, error) {
	m, err := s.redeemable(ctx, strings.TrimSpace(token))
	if err != nil {
		var derr *domainerrors.Error
		if errors.As(err, &derr) {
			return &TokenCheck{Valid: false, Error: derr.Code}, nil
		}
		return nil, err
	}

	return &TokenCheck{
		Valid: true,
		Member: &MemberPreview{
			ID:      m.ID,
			Name:    m.Name,
			Email:   m.Email,
			Company: m.Company,
		},
	}, nil
}

func (s *RegistrationService) redeemable(ctx context.Context, token string) (*domain.Member, error) {
	if token == "" {
		return nil, domainerrors.InvalidToken("invite token is invalid")
	}

	m, err := s.store.GetMemberByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidToken("invite token is invalid")
		}
		return nil, fmt.Errorf("get member by token: %w", err)
	}

	if m.TokenExpiry == nil || s.tokens.IsTokenExpired(*m.TokenExpiry) {
		return nil, domainerrors.TokenExpired("invite token has expired")
	}

	if m.Status != domain.MemberInvited {
		return nil, domainerrors.AlreadyRegistered("member is already registered")
	}

	return m, nil
}

func profileUpdate(req RegisterRequest) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Phone:    normalize.Optional(req.Phone, normalize.Phone),
		Company:  normalize.Optional(req.Company, normalize.Text),
		Position: normalize.Optional(req.Position, normalize.Text),
		Segment:  normalize.Optional(req.Segment, normalize.Text),
		Bio:      normalize.Optional(req.Bio, strings.TrimSpace),
		LinkedIn: normalize.Optional(req.LinkedIn, strings.TrimSpace),
		Website:  normalize.Optional(req.Website, strings.TrimSpace),
	}
}
