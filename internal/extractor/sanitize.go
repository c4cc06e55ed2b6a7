package extractor

import "strings"

// sanitizeResponse coerces raw model output towards a parseable JSON string.
// It strips markdown fences, reduces the text to the first-[..last-] array
// span when one exists, and trims any stray prose before the first opening
// or after the last closing bracket. It does not guarantee valid JSON.
func sanitizeResponse(raw string) string {
	s := strings.TrimSpace(raw)

	// Fenced code block, with or without a language tag on the fence line.
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	// Greedy array span: first [ through last ].
	if start := strings.Index(s, "["); start >= 0 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = s[start : end+1]
		}
	}

	// Leftover preamble/trailer around a bare object or array.
	if start := strings.IndexAny(s, "[{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndexAny(s, "]}"); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}

	return strings.TrimSpace(s)
}
