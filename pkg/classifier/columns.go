package classifier

import "strings"

var urlKeywords = []string{"url", "address", "link", "href", "page"}

var indexabilityKeywords = []string{"indexability", "indexable", "index", "status", "indexation"}

// FindURLColumn scans headers in column order and returns the first one
// whose normalized name contains a URL-ish keyword.
func FindURLColumn(headers []string) (string, bool) {
	return findColumn(headers, urlKeywords)
}

// FindIndexabilityColumn scans headers in column order and returns the
// first one whose normalized name contains an indexability-ish keyword.
func FindIndexabilityColumn(headers []string) (string, bool) {
	return findColumn(headers, indexabilityKeywords)
}

func findColumn(headers, keywords []string) (string, bool) {
	for _, header := range headers {
		normalized := normalizeHeader(header)
		for _, keyword := range keywords {
			if strings.Contains(normalized, keyword) {
				return header, true
			}
		}
	}
	return "", false
}

func normalizeHeader(header string) string {
	normalized := strings.ToLower(header)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	return normalized
}
