package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "alyra/pkg/domain-errors"
)

const maxIdentityLength = 128

// Identity is the caller identity supplied by the transport (the subject of a
// verified token). Two identities are the same caller iff their values are equal.
//
// Invariant: non-empty, at most 128 bytes, lower-case, no surrounding
// whitespace or control characters. Construct via ParseIdentity at trust
// boundaries; direct casting bypasses validation.
type Identity string

// ParseIdentity normalizes and validates an identity from external input.
func ParseIdentity(s string) (Identity, error) {
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be valid UTF-8")
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if len(s) > maxIdentityLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity must be 128 characters or less")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity contains invalid characters")
		}
	}
	return Identity(s), nil
}

func (i Identity) String() string { return string(i) }

// IsNil reports whether the identity is unset.
func (i Identity) IsNil() bool { return i == "" }
