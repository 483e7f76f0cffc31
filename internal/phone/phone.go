// Package phone canonicalizes phone numbers so the same visitor typed with
// different formatting or country-code prefixes compares equal.
package phone

import (
	"errors"
	"strings"
)

// ErrPhoneTooShort means normalization could not produce a usable lookup key.
var ErrPhoneTooShort = errors.New("phone number too short")

// MinKeyLen is the minimum number of digits a normalized phone must have to
// be usable as a match key.
const MinKeyLen = 10

// Normalize strips every non-digit character, then strips a leading "88"
// country prefix when the remaining string is longer than 10 digits (extra
// digits beyond 10 are what confirm "88" is a prefix rather than part of the
// number).
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "88") && len(digits) > 10 {
		return digits[2:]
	}
	if strings.HasPrefix(digits, "1") && len(digits) == 11 {
		// Reserved branch: a leading "1" on an 11-digit number is recognized
		// but deliberately not stripped. Open question for product owners.
		return digits
	}
	return digits
}

// Key returns the normalized form if it is long enough to serve as a match
// key, otherwise ErrPhoneTooShort.
func Key(raw string) (string, error) {
	n := Normalize(raw)
	if len(n) < MinKeyLen {
		return "", ErrPhoneTooShort
	}
	return n, nil
}

// Match reports whether two raw phone strings normalize to the same usable
// key. Numbers too short to key never match anything.
func Match(a, b string) (bool, error) {
	ka, err := Key(a)
	if err != nil {
		return false, err
	}
	kb, err := Key(b)
	if err != nil {
		return false, err
	}
	return ka == kb, nil
}
