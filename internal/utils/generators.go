package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

func GenerateID() string {
	return uuid.New().String()
}

// GenerateShortID returns the first eight hex characters of a random UUID
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Slugify lowercases name, turns whitespace runs into single dashes and drops
// everything outside [a-z0-9-].
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		}
	}
	return strings.Trim(b.String(), "-")
}
