// Package slug derives URL identifiers for blog posts from their titles.
package slug

import (
	"regexp"
	"strings"
)

// nonAlnum matches every maximal run outside [a-z0-9]
var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Derive lower-cases title, collapses each run of characters outside
// [a-z0-9] into one hyphen and trims hyphens from both ends. Non-ASCII
// letters are separators, not transliterated. Uniqueness is left to the
// store.
func Derive(title string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s has the shape Derive produces for a non-empty result.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}
