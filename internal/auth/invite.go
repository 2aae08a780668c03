package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

const (
	// inviteTokenBytes is the entropy of an invite token (256 bits).
	inviteTokenBytes = 32
	// InviteTokenLength is the encoded length of every invite token.
	InviteTokenLength = 43
	// DefaultInviteTTL is how long an invite stays redeemable.
	DefaultInviteTTL = 7 * 24 * time.Hour
)

// InviteTokens mints opaque registration tokens and decides their expiry.
// It owns no storage: callers persist the token on the member row.
type InviteTokens struct {
	ttl time.Duration
	now func() time.Time
}

// NewInviteTokens creates an invite token service.
// A zero ttl falls back to DefaultInviteTTL; a nil clock uses time.Now.
func NewInviteTokens(ttl time.Duration, now func() time.Time) *InviteTokens {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	if now == nil {
		now = time.Now
	}
	return &InviteTokens{ttl: ttl, now: now}
}

// GenerateInviteToken returns a cryptographically random, URL-safe token of
// InviteTokenLength characters.
func (t *InviteTokens) GenerateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateTokenExpiry returns now + TTL.
func (t *InviteTokens) GenerateTokenExpiry() time.Time {
	return t.now().Add(t.ttl).UTC()
}

// IsTokenExpired reports whether now is strictly after expiry.
func (t *InviteTokens) IsTokenExpired(expiry time.Time) bool {
	return t.now().After(expiry)
}

// TTL returns the configured invite lifetime.
func (t *InviteTokens) TTL() time.Duration {
	return t.ttl
}
