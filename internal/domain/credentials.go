package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MinPasswordLen = 5
	// MaxEmailLen matches the users.email and users.username columns.
	MaxEmailLen = 120
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s.]+(\.[^@\s.]+)+$`)

// ValidEmail accepts local@label.suffix with any number of dot separated
// labels after the first one, up to MaxEmailLen bytes.
func ValidEmail(s string) bool {
	if len(s) > MaxEmailLen {
		return false
	}
	return emailRe.MatchString(s)
}

// ValidPassword requires MinPasswordLen characters, an ASCII digit and an
// ASCII punctuation character.
func ValidPassword(s string) bool {
	if strings.TrimSpace(s) == "" || len([]rune(s)) < MinPasswordLen {
		return false
	}

	var digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return digit && special
}
