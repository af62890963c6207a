package utils

import (
	"regexp"
	"strings"
)

var phoneDigits = regexp.MustCompile(`^\d{10,15}$`)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePhone strips '+', '-' and spaces.
func NormalizePhone(s string) string {
	return strings.NewReplacer("+", "", "-", "", " ", "").Replace(strings.TrimSpace(s))
}

// ValidPhone reports whether s is 10 to 15 digits once normalized.
func ValidPhone(s string) bool {
	return phoneDigits.MatchString(NormalizePhone(s))
}

// LastN returns the last n characters of s (all of s when shorter).
func LastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
