package telegram

import "strings"

// MaxMessageLen is the hard ceiling of the Bot API for a single message.
const MaxMessageLen = 4096

// SplitMessage cuts text into sequential chunks of at most limit characters.
// Each cut prefers the last newline within the chunk, but only when that
// newline lies in the second half, so chunks never get pathologically short.
// Concatenating the returned chunks reproduces the input exactly.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for len(text) > limit {
		cut := limit
		if idx := strings.LastIndex(text[:limit], "\n"); idx > limit/2 {
			cut = idx + 1 // keep the newline at the end of the part
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}
