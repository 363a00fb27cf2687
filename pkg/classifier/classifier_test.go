package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/logger"
	"sitemap-gen/pkg/registry"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "fatal"})
}

func testRegistry() *registry.Registry {
	// Most specific homepage first: assignment is first-match over
	// registry order, not longest-match.
	return registry.New(
		registry.Entry{Key: "en-gb", URL: "https://example.com/gb", Country: "gb", Language: "en"},
		registry.Entry{Key: "en", URL: "https://example.com", Country: "us", Language: "en", IsDefault: true},
	)
}

func TestExcludedByIndexability(t *testing.T) {
	tests := []struct {
		value    string
		excluded bool
	}{
		{"Indexable", false},
		{"indexable", false},
		{"true", false},
		{"yes", false},
		{"No Index", true},
		{"noindex", true},
		{"Non-Indexable", true},
		{"Not Indexable", true},
		{"false", true},
		{"no", true},
		{"n", true},
		{"0", true},
		{"", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.excluded, excludedByIndexability(tt.value), "value %q", tt.value)
	}
}

func TestClassify_BucketsAndCounts(t *testing.T) {
	path := writeCSV(t, `Address,Indexability,Title
https://example.com/gb/products,Indexable,Products
https://example.com/gb/products/Page-2,Indexable,Products p2
https://example.com/about,Indexable,About
https://example.com/secret,No Index,Secret
https://other.com/elsewhere,Indexable,Elsewhere
`)

	res, err := Classify(path, testRegistry(), testLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Indexable)
	assert.Equal(t, 1, res.NonIndexable)
	assert.Equal(t, 1, res.DomainSkipped)
	assert.Empty(t, res.RowErrors)

	require.Len(t, res.Pages["en-gb"], 2)
	assert.Equal(t, "https://example.com/gb/products", res.Pages["en-gb"][0].URL)
	assert.Equal(t, "https://example.com/gb/products/Page-2", res.Pages["en-gb"][1].URL)

	require.Len(t, res.Pages["en"], 1)
	assert.Equal(t, "https://example.com/about", res.Pages["en"][0].URL)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// With the default locale registered first, its root path prefixes
	// every URL on the domain.
	reg := registry.New(
		registry.Entry{Key: "en", URL: "https://example.com", IsDefault: true},
		registry.Entry{Key: "en-gb", URL: "https://example.com/gb"},
	)
	path := writeCSV(t, "Address\nhttps://example.com/gb/products\n")

	res, err := Classify(path, reg, testLogger())
	require.NoError(t, err)

	assert.Len(t, res.Pages["en"], 1)
	assert.Empty(t, res.Pages["en-gb"])
}

func TestClassify_NoIndexabilityColumnMeansNoFiltering(t *testing.T) {
	path := writeCSV(t, "Address,Title\nhttps://example.com/a,A\nhttps://example.com/b,B\n")

	res, err := Classify(path, testRegistry(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexable)
	assert.Equal(t, 0, res.NonIndexable)
}

func TestClassify_MissingURLColumn(t *testing.T) {
	path := writeCSV(t, "Title,Depth\nHome,0\n")

	_, err := Classify(path, testRegistry(), testLogger())
	require.Error(t, err)

	var cfgErr *errs.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestClassify_MalformedRowSkipped(t *testing.T) {
	path := writeCSV(t, "Address\nhttps://example.com/ok\n://not-a-url\n")

	res, err := Classify(path, testRegistry(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexable)
	assert.Len(t, res.RowErrors, 1)
	assert.Equal(t, 3, res.RowErrors[0].Row)
}

func TestClassify_PathPatternRecorded(t *testing.T) {
	path := writeCSV(t, "Address\nhttps://example.com/US/products\n")

	res, err := Classify(path, testRegistry(), testLogger())
	require.NoError(t, err)
	require.Len(t, res.Pages["en"], 1)
	assert.Equal(t, "/products", res.Pages["en"][0].PathPattern)
}
