package auth

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/id"
)

const (
	tokenIssuer   = "nexo-server"
	tokenAudience = "nexo-members"
)

// SessionClaims are the claims carried in a member session token.
// v4.local tokens are encrypted, so the claims are opaque to clients.
type SessionClaims struct {
	MemberID string      `json:"member_id"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// SessionTokens issues and verifies PASETO v4.local member session tokens.
type SessionTokens struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
}

// NewSessionTokens creates a session token service from a raw 32-byte key.
func NewSessionTokens(key []byte, duration time.Duration) (*SessionTokens, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &SessionTokens{key: symmetricKey, duration: duration}, nil
}

// NewSessionTokensFromHex is NewSessionTokens for a hex-encoded key.
func NewSessionTokensFromHex(keyHex string, duration time.Duration) (*SessionTokens, error) {
	key, err := KeyFromHex(keyHex)
	if err != nil {
		return nil, err
	}
	return NewSessionTokens(key, duration)
}

// Issue creates a session token for an active member.
func (s *SessionTokens) Issue(member *domain.Member) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(s.duration)

	t := paseto.NewToken()
	t.SetIssuer(tokenIssuer)
	t.SetSubject(member.ID)
	t.SetAudience(tokenAudience)
	t.SetIssuedAt(now)
	t.SetNotBefore(now)
	t.SetExpiration(expiresAt)

	jti, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	t.SetJti(jti)

	//nolint:errcheck // Token.Set only errors on unmarshalable values, which we control
	_ = t.Set("member_id", member.ID)
	//nolint:errcheck // see above
	_ = t.Set("email", member.Email)
	//nolint:errcheck // see above
	_ = t.Set("role", string(domain.RoleMember))

	return t.V4Encrypt(s.key, nil), expiresAt, nil
}

// Verify decrypts and validates a session token.
func (s *SessionTokens) Verify(token string) (*SessionClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	parsed, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(parsed.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// Duration returns the configured session lifetime.
func (s *SessionTokens) Duration() time.Duration {
	return s.duration
}

// AdminKeyMatches compares a presented admin key with the configured one in
// constant time. An empty configured key never matches.
func AdminKeyMatches(configured, presented string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
