package validators

import "strings"

// SanitizeString trims whitespace and caps the length of free-text input
// such as the admin search filter. maxLen <= 0 means unbounded.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
