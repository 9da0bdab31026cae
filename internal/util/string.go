package util

import (
	"strings"
	"unicode"
)

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeKey normalizes a content-type id for registry lookups by removing
// whitespace, hyphens and underscores and lowercasing the rest
func NormalizeKey(id string) string {
	id = Normalize(id)
	if id == "" {
		return ""
	}

	var builder strings.Builder
	for _, r := range id {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '-' || r == '_':
			continue
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Slugify converts a title to a URL-friendly slug: lowercase, runs of
// non-alphanumeric characters collapse to a single hyphen, leading/trailing
// hyphens trimmed
func Slugify(title string) string {
	title = strings.ToLower(title)

	var builder strings.Builder
	lastHyphen := false
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			builder.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(builder.String(), "-")
}

// CollapseWhitespace replaces every run of whitespace with a single space and
// trims the result
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateEllipsis truncates a string to maxRunes characters (rune-based).
// If truncated, the last rune is replaced by an ellipsis so the result never
// exceeds maxRunes.
func TruncateEllipsis(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	head := strings.TrimRight(string(runes[:maxRunes-1]), " ")
	return head + "…"
}

// Redact masks a credential for log output, keeping the first and last two
// characters only
func Redact(s string) string {
	if s == "" {
		return "(none)"
	}
	runes := []rune(s)
	if len(runes) <= 4 {
		return "••••"
	}
	return string(runes[:2]) + "••••" + string(runes[len(runes)-2:])
}
