package classifier

import "regexp"

var paginationPattern = regexp.MustCompile(`(?i)/Page-\d+`)

// IsPaginated reports whether the URL points at a paginated listing page.
func IsPaginated(rawURL string) bool {
	return paginationPattern.MatchString(rawURL)
}

// SplitPagination partitions a locale bucket into regular and paginated
// sequences, preserving relative order within each.
func SplitPagination(pages []Page) (regular, paginated []Page) {
	for _, page := range pages {
		if IsPaginated(page.URL) {
			paginated = append(paginated, page)
		} else {
			regular = append(regular, page)
		}
	}
	return regular, paginated
}
