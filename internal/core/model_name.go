package core

import "strings"

// ShortModelName shortens a model id for display only; pricing lookups
// always use the raw id.
//
//	"claude-opus-4-6"            -> "opus-4-6"
//	"claude-sonnet-4-5-20250929" -> "sonnet-4-5"
func ShortModelName(model string) string {
	s := strings.TrimPrefix(model, "claude-")
	if len(s) > 9 && s[len(s)-9] == '-' && allDigits(s[len(s)-8:]) {
		return s[:len(s)-9]
	}
	return s
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
