package utils

import (
	"strings"
	"unicode/utf8"
)

// Snippet cuts a window of roughly 'radius' runes on each side of the first
// case-insensitive match of needle in text. Ellipses mark trimmed edges.
func Snippet(text, needle string, radius int) string {
	if needle == "" {
		return Truncate(text, radius*2)
	}

	lowerText := strings.ToLower(text)
	idx := strings.Index(lowerText, strings.ToLower(needle))
	if idx < 0 || len(lowerText) != len(text) {
		// Case folding changed byte offsets; fall back to the head of the text.
		return Truncate(text, radius*2)
	}

	runes := []rune(text)
	start := utf8.RuneCountInString(text[:idx])
	end := start + utf8.RuneCountInString(needle)

	from := start - radius
	if from < 0 {
		from = 0
	}
	to := end + radius
	if to > len(runes) {
		to = len(runes)
	}

	var sb strings.Builder
	if from > 0 {
		sb.WriteString("…")
	}
	sb.WriteString(strings.TrimSpace(string(runes[from:to])))
	if to < len(runes) {
		sb.WriteString("…")
	}
	return sb.String()
}

// Truncate shortens text to at most max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
