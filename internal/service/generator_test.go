package service

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemap-gen/internal/config"
	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/progress"
)

var fixedNow = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Storage.UploadDir = filepath.Join(root, "uploads")
	cfg.Storage.OutputDir = filepath.Join(root, "output")
	cfg.Storage.LogDir = filepath.Join(root, "logs")
	return cfg
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestGenerator(cfg *config.Config, tracker *progress.Tracker) *Generator {
	g := NewGenerator(cfg, tracker)
	g.now = func() time.Time { return fixedNow }
	return g
}

func readLocs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(data, &doc))

	locs := make([]string, 0, len(doc.URLs))
	for _, u := range doc.URLs {
		locs = append(locs, u.Loc)
	}
	return locs
}

func countDataRows(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return len(lines) - 1 // minus header
}

const homepageCSV = `Homepage,Country,Language,Locale,Language Default
https://example.com/gb/,GB,EN,en-GB,N
https://example.com/,US,EN,en-US,Y
https://example.com/fr/,FR,FR,fr-FR,N
`

const inventoryCSV = `Address,Indexability
https://example.com/gb/products,Indexable
https://example.com/gb/products/Page-2,Indexable
https://example.com/about,Indexable
https://example.com/secret,No Index
https://other.com/elsewhere,Indexable
`

func TestRun_FullBatch(t *testing.T) {
	cfg := testConfig(t)
	tracker := progress.NewTracker()
	g := newTestGenerator(cfg, tracker)

	summary, err := g.Run(
		writeInput(t, "homepages.csv", homepageCSV),
		writeInput(t, "inventory.csv", inventoryCSV),
	)
	require.NoError(t, err)

	layout := Layout{Root: cfg.Storage.OutputDir}

	// en-GB regular chunk: homepage first, then the product page.
	gbLocs := readLocs(t, filepath.Join(layout.LocaleRaw(), "sitemap_20260823_EN-GB.xml"))
	assert.Equal(t, []string{
		"https://example.com/gb/",
		"https://example.com/gb/products",
	}, gbLocs)

	// Default locale picks up everything not matched earlier.
	enLocs := readLocs(t, filepath.Join(layout.LocaleRaw(), "sitemap_20260823_EN.xml"))
	assert.Equal(t, []string{
		"https://example.com/",
		"https://example.com/about",
	}, enLocs)

	// Paginated pages go to their own stream.
	pagLocs := readLocs(t, filepath.Join(layout.PaginatedRaw(), "paginated_sitemap_20260823_EN-GB.xml"))
	assert.Equal(t, []string{"https://example.com/gb/products/Page-2"}, pagLocs)

	// Master aggregate carries every regular URL, homepages included.
	masterLocs := readLocs(t, filepath.Join(layout.MasterRaw(), "master_sitemap_20260823.xml"))
	assert.Len(t, masterLocs, 4)
	assert.Equal(t, append(gbLocs, enLocs...), masterLocs)

	// Reports.
	assert.Equal(t, 4, countDataRows(t, filepath.Join(layout.Reports(), "all_urls_20260823.csv")))
	assert.Equal(t, 1, countDataRows(t, filepath.Join(layout.Reports(), "all_paginated_urls_20260823.csv")))

	skipped, err := os.ReadFile(filepath.Join(layout.Reports(), "skipped_locales_20260823.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(skipped), "fr-fr,https://example.com/fr,,fr")

	// Master sequence size equals the regular report row count.
	assert.Equal(t, 4, summary.RegularURLs)
	assert.Equal(t, 1, summary.PaginatedURLs)
	assert.Equal(t, 1, summary.MasterChunks)
	assert.Equal(t, 1, summary.SkippedLocales)

	s := tracker.Snapshot()
	assert.Equal(t, "Complete", s.Status)
	assert.Equal(t, 100, s.Percentage)
	assert.Nil(t, s.Error)
}

func TestRun_GzipMatchesRaw(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGenerator(cfg, progress.NewTracker())

	_, err := g.Run(
		writeInput(t, "homepages.csv", homepageCSV),
		writeInput(t, "inventory.csv", inventoryCSV),
	)
	require.NoError(t, err)

	layout := Layout{Root: cfg.Storage.OutputDir}
	raw, err := os.ReadFile(filepath.Join(layout.LocaleRaw(), "sitemap_20260823_EN-GB.xml"))
	require.NoError(t, err)

	gzData, err := os.ReadFile(filepath.Join(layout.LocaleGz(), "sitemap_20260823_EN-GB.xml.gz"))
	require.NoError(t, err)
	gr, err := gzip.NewReader(bytes.NewReader(gzData))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gr)
	require.NoError(t, err)

	assert.Equal(t, raw, decompressed)
}

func TestRun_ChunkSplitAndIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sitemap.MaxURLs = 2
	g := newTestGenerator(cfg, progress.NewTracker())

	homepages := "Homepage,Section,Locale\nhttps://example.com/news/,News,NW\n"
	inventory := `Address
https://example.com/news/a
https://example.com/news/b
https://example.com/news/c
`

	summary, err := g.Run(
		writeInput(t, "homepages.csv", homepages),
		writeInput(t, "inventory.csv", inventory),
	)
	require.NoError(t, err)

	layout := Layout{Root: cfg.Storage.OutputDir}

	// Over the cap: suffixed from chunk 1 plus an index document.
	chunk1 := readLocs(t, filepath.Join(layout.LocaleRaw(), "sitemap_20260823_News_NW_1.xml"))
	assert.Equal(t, []string{"https://example.com/news/", "https://example.com/news/a"}, chunk1)

	chunk2 := readLocs(t, filepath.Join(layout.LocaleRaw(), "sitemap_20260823_News_NW_2.xml"))
	assert.Equal(t, []string{"https://example.com/news/b", "https://example.com/news/c"}, chunk2)

	idxData, err := os.ReadFile(filepath.Join(layout.LocaleRaw(), "sitemap_index_20260823_News_NW.xml"))
	require.NoError(t, err)
	idx := string(idxData)
	assert.Contains(t, idx, "<loc>https://example.com/news/sitemap_20260823_News_NW_1.xml.gz</loc>")
	assert.Contains(t, idx, "<loc>https://example.com/news/sitemap_20260823_News_NW_2.xml.gz</loc>")
	assert.Contains(t, idx, "<lastmod>2026-08-23</lastmod>")

	// Master (4 URLs, cap 2) splits and gets its own index.
	assert.Equal(t, 2, summary.MasterChunks)
	_, err = os.Stat(filepath.Join(layout.MasterRaw(), "master_sitemap_20260823_1.xml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(layout.MasterRaw(), "master_sitemap_index_20260823.xml"))
	assert.NoError(t, err)
}

func TestRun_ConfigurationFailure(t *testing.T) {
	cfg := testConfig(t)
	tracker := progress.NewTracker()
	g := newTestGenerator(cfg, tracker)

	_, err := g.Run(
		writeInput(t, "homepages.csv", "Homepage,Region\nhttps://example.com,Europe\n"),
		writeInput(t, "inventory.csv", inventoryCSV),
	)
	require.Error(t, err)

	var cfgErr *errs.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	s := tracker.Snapshot()
	assert.Equal(t, "Error", s.Status)
	assert.Equal(t, 0, s.Percentage)
	require.NotNil(t, s.Error)

	// A timestamped entry lands in the error log.
	entries, readErr := os.ReadDir(cfg.Storage.LogDir)
	require.NoError(t, readErr)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Name(), "error_log_")
}

func TestRun_ZeroIndexableContinues(t *testing.T) {
	cfg := testConfig(t)
	tracker := progress.NewTracker()
	g := newTestGenerator(cfg, tracker)

	inventory := "Address,Indexability\nhttps://example.com/a,No Index\n"
	summary, err := g.Run(
		writeInput(t, "homepages.csv", homepageCSV),
		writeInput(t, "inventory.csv", inventory),
	)
	require.NoError(t, err)

	// The run finishes so the skipped-locale report still gets written,
	// but the error is surfaced on the tracker.
	assert.Equal(t, 0, summary.RegularURLs)
	assert.Equal(t, 3, summary.SkippedLocales)

	s := tracker.Snapshot()
	assert.Equal(t, "Complete", s.Status)
	require.NotNil(t, s.Error)
	assert.Contains(t, *s.Error, "No indexable pages found")
}
