// Package grading implements the deterministic answer-matching and scoring
// rules for anatomy lab attempts. Everything here is pure and safe for
// concurrent use.
package grading

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw answer for comparison: lower-case, strip
// everything that is not a word character or whitespace, collapse whitespace
// runs to single spaces, and trim. Idempotent; never fails.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
