package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPaginated(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/shoes/Page-2", true},
		{"https://example.com/shoes/page-17/items", true},
		{"https://example.com/shoes/PAGE-1", true},
		{"https://example.com/shoes/Page-", false},
		{"https://example.com/shoes/Pages-2", false},
		{"https://example.com/shoes", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPaginated(tt.url), tt.url)
	}
}

func TestSplitPagination_PreservesOrder(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/a/Page-2"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/b/Page-3"},
		{URL: "https://example.com/c"},
	}

	regular, paginated := SplitPagination(pages)

	assert.Equal(t, []Page{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: "https://example.com/c"},
	}, regular)
	assert.Equal(t, []Page{
		{URL: "https://example.com/a/Page-2"},
		{URL: "https://example.com/b/Page-3"},
	}, paginated)
}
