// Package id generates prefixed entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. The prefix makes an ID self-describing in logs and URLs.
const (
	PrefixIntention  = "int"
	PrefixMember     = "mem"
	PrefixMeeting    = "mtg"
	PrefixAttendance = "att"
	PrefixMembership = "due"
	PrefixNotice     = "ntc"
	PrefixThank      = "thx"
	PrefixEmail      = "eml"
	PrefixToken      = "tok"
)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "mem-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only where failure should crash the program (seeding, tests).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
