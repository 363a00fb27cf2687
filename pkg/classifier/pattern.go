package classifier

import (
	"net/url"
	"strings"
	"unicode"
)

// ExtractPathPattern reduces a URL path to a locale-agnostic signature by
// dropping two-letter uppercase segments and two-letter segments followed
// by a short (≤5 char) segment. The query string is preserved. The result
// is recorded on each page for reporting; nothing downstream routes on it.
func ExtractPathPattern(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	var parts []string
	for _, p := range strings.Split(parsed.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	var cleaned []string
	skipNext := false
	for i, part := range parts {
		if skipNext {
			skipNext = false
			continue
		}
		switch {
		case len(part) == 2 && isUpper(part):
			// locale segment like /EN/
		case i < len(parts)-1 && len(part) == 2 && len(parts[i+1]) <= 5:
			// locale pair like /en/gb/
			skipNext = true
		default:
			cleaned = append(cleaned, part)
		}
	}

	path := "/"
	if len(cleaned) > 0 {
		path = "/" + strings.Join(cleaned, "/")
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return path
}

// isUpper reports whether s contains at least one cased rune and no
// lowercase runes.
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
