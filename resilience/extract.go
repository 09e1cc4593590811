// Package resilience recovers structured data from freeform model output.
//
// The pipeline is extract -> repair -> normalize -> validate. Every step is a
// total function: the pipeline never panics and never returns a bare Go
// error; callers always receive a ValidatedOutput carrying either typed data
// or a diagnostic with the (truncated) raw payload.
package resilience

import (
	"regexp"
	"strings"
)

var (
	fencedRe      = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \t]*\r?\n?(.*?)```")
	formatTokenRe = regexp.MustCompile(`^[A-Za-z]{1,16}$`)
)

// Extract locates the structured payload inside freeform model text.
// Preference order: a fenced block tagged json; any fenced block; the span
// from the first opening brace to the last closing brace; the raw text
// unchanged. Stray leading format-name tokens ("json" on its own line, or
// glued to the opening brace) are stripped from fenced payloads.
func Extract(raw string) string {
	matches := fencedRe.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		if strings.EqualFold(m[1], "json") {
			return stripFormatToken(strings.TrimSpace(m[2]))
		}
	}
	if len(matches) > 0 {
		return stripFormatToken(strings.TrimSpace(matches[0][2]))
	}

	trimmed := strings.TrimSpace(raw)
	if i := strings.IndexByte(trimmed, '{'); i >= 0 {
		if j := strings.LastIndexByte(trimmed, '}'); j > i {
			return trimmed[i : j+1]
		}
	}
	return trimmed
}

// stripFormatToken drops a bare format-name token preceding the payload,
// either on its own line or immediately before the opening brace. Bare
// unwrapped payloads pass through unchanged.
func stripFormatToken(s string) string {
	if nl := strings.IndexByte(s, '\n'); nl > 0 {
		first := strings.TrimSpace(s[:nl])
		if formatTokenRe.MatchString(first) {
			rest := strings.TrimSpace(s[nl+1:])
			if strings.HasPrefix(rest, "{") || strings.HasPrefix(rest, "[") {
				return rest
			}
		}
	}
	if i := strings.IndexAny(s, "{["); i > 0 {
		if formatTokenRe.MatchString(strings.TrimSpace(s[:i])) {
			return s[i:]
		}
	}
	return s
}
