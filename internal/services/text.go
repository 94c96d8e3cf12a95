package services

import "unicode/utf8"

// TruncateRunes keeps at most limit runes from the start of s.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen counts characters the way every length threshold in this package does.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
