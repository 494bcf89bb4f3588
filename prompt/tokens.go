package prompt

import "strings"

// TruncationMarker is appended to any component cut down to fit its budget.
const TruncationMarker = "\n[...truncated]"

// EstimateTokens approximates the token count of text as ceil(len/4). It is
// intentionally coarse; see the package comment before replacing it.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// TruncateToTokenLimit cuts text down to roughly limit tokens. It is a no-op
// when the text already fits. The cut prefers the nearest preceding line
// boundary, falling back to a hard character cut, and always appends
// TruncationMarker. The second return reports whether truncation happened.
func TruncateToTokenLimit(text string, limit int) (string, bool) {
	if limit <= 0 {
		if text == "" {
			return "", false
		}
		return TruncationMarker, true
	}
	if EstimateTokens(text) <= limit {
		return text, false
	}
	maxChars := limit * 4
	cut := text[:maxChars]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, "\n") + TruncationMarker, true
}
