// Package normalize canonicalizes user-supplied contact data before it is
// stored or compared.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	phoneNoise      = regexp.MustCompile(`[\s().\-/]+`)
)

// Email returns the canonical form used for uniqueness: trimmed, lowercased
// local part, and the domain in its ASCII (punycode) form. Inputs without a
// single "@" are only trimmed and lowercased so validation can still reject
// them with a useful message.
func Email(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return s
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return s
	}
	return local + "@" + ascii
}

// Name collapses internal whitespace, composes unicode, and title-cases
// names typed entirely in one case ("ANA SOUZA", "ana souza"). Mixed-case
// names are kept as typed so "McDonald" or "da Silva" survive.
func Name(raw string) string {
	s := Text(raw)
	if s == "" {
		return s
	}

	if s == strings.ToLower(s) || s == strings.ToUpper(s) {
		return cases.Title(language.Und).String(s)
	}
	return s
}

// Text trims, NFC-composes and collapses runs of whitespace to one space.
func Text(raw string) string {
	return strings.Join(strings.Fields(norm.NFC.String(raw)), " ")
}

// Phone strips common punctuation, keeping a leading "+".
func Phone(raw string) string {
	return phoneNoise.ReplaceAllString(strings.TrimSpace(raw), "")
}

// Fold lowercases and strips diacritics, for accent-insensitive matching.
// "João" -> "joao".
func Fold(raw string) string {
	s := norm.NFKD.String(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}

// Segment turns a free-form business segment into a stable facet key.
// "Tecnologia da Informação" -> "tecnologia-da-informacao".
func Segment(raw string) string {
	s := Fold(raw)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Optional applies fn to a non-nil pointer and returns a new pointer.
func Optional(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
