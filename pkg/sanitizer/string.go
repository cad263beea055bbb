package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail lowercases and trims; mongo unique indexes on email rely on this.
func NormalizeEmail(email string) string {
	p := Pipeline{
		strings.TrimSpace,
		strings.ToLower,
	}
	return p.Apply(email)
}

// NormalizeDays trims each weekday entry and drops empties. Case is preserved:
// availability matching is case-sensitive against the canonical weekday names.
func NormalizeDays(days []string) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
