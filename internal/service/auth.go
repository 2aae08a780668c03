package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexogroup/nexo-server/internal/auth"
	"github.com/nexogroup/nexo-server/internal/domain"
	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/normalize"
	"github.com/nexogroup/nexo-server/internal/store"
)

// dummyHash is verified against when there is no real hash to check, an
// unknown email or a member without a password, so that every failed login
// costs one argon2 run.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$c29tZXNhbHRzb21lc2FsdA$Gd3d4wXW5Tq9kG1tHh1lRfq0Qm0xq7x3J2Qm5Zc2Z2Q"

// verifyPassword is swapped in tests.
var verifyPassword = auth.VerifyPassword

// AuthService handles member login and session resolution.
type AuthService struct {
	store    store.Store
	sessions *auth.SessionTokens
	logger   *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(store store.Store, sessions *auth.SessionTokens, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		logger:   logger,
	}
}

// LoginRequest holds member credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a session token.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Member    *domain.Member `json:"member"`
}

// Login exchanges credentials for a session token. Every failure reads the
// same to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = normalize.Email(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	m, err := s.store.GetMemberByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			verifyPassword(dummyHash, req.Password)
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	hash := m.PasswordHash
	if !m.HasPassword() {
		hash = dummyHash
	}
	if ok := verifyPassword(hash, req.Password); !ok || !m.HasPassword() || !m.IsActive() {
		s.logger.Debug("login rejected", "member_id", m.ID, "status", m.Status)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	token, expiresAt, err := s.sessions.Issue(m)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	s.logger.Info("member logged in", "member_id", m.ID)

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Member: m}, nil
}

// ResolveSession verifies a bearer token and returns the caller it names.
// Tokens of members who are no longer ACTIVE are refused.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (Caller, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return Caller{}, domainerrors.Unauthorized("invalid or expired session")
	}

	m, err := s.store.GetMember(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Caller{}, domainerrors.Unauthorized("invalid or expired session")
		}
		return Caller{}, fmt.Errorf("get member: %w", err)
	}

	if !m.IsActive() {
		return Caller{}, domainerrors.Unauthorized("member is not active")
	}

	return MemberCaller(m.ID), nil
}
