package utils

import (
	"strings"
	"unicode"
)

// SanitizeFilename makes a video title safe to use as a download file name.
// Path separators become '-', control characters are dropped.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}
