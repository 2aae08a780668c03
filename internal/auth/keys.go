// Package auth holds the credential primitives of the group server: member
// passwords, session tokens, invite tokens and the admin key check.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4.local needs a 256-bit symmetric key.
	keyLength    = 32
	keyHexLength = keyLength * 2

	keyFileName = "auth.key"
)

// SessionKey resolves the session signing key. A configured hex secret wins;
// otherwise the key is read from (or created in) dataDir so sessions survive
// restarts.
func SessionKey(secretHex, dataDir string) ([]byte, error) {
	if secretHex != "" {
		return KeyFromHex(secretHex)
	}
	return LoadOrGenerateKey(dataDir)
}

// KeyFromHex decodes a hex-encoded 32-byte key.
func KeyFromHex(keyHex string) ([]byte, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("session key must be %d hex characters, got %d", keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("session key is not valid hex: %w", err)
	}
	return key, nil
}

// LoadOrGenerateKey reads <dataDir>/auth.key, creating it with a fresh
// random key when missing.
func LoadOrGenerateKey(dataDir string) ([]byte, error) {
	keyPath := filepath.Join(dataDir, keyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		return KeyFromHex(string(raw))
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save session key: %w", err)
	}

	return key, nil
}
