package sitemap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_ArtifactPair(t *testing.T) {
	rawDir := t.TempDir()
	gzDir := t.TempDir()
	w := NewWriter(rawDir, gzDir)

	doc := NewURLSet([]string{"https://example.com/", "https://example.com/a"})
	require.NoError(t, w.Write("sitemap_20260823_EN", doc))

	raw, err := os.ReadFile(filepath.Join(rawDir, "sitemap_20260823_EN.xml"))
	require.NoError(t, err)

	gzData, err := os.ReadFile(filepath.Join(gzDir, "sitemap_20260823_EN.xml.gz"))
	require.NoError(t, err)

	gr, err := gzip.NewReader(bytes.NewReader(gzData))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gr)
	require.NoError(t, err)
	require.NoError(t, gr.Close())

	assert.Equal(t, raw, decompressed, "gzip artifact decompresses to the raw artifact byte for byte")
}

func TestWriter_MissingDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	err := w.Write("sitemap", NewURLSet([]string{"https://example.com/"}))
	assert.Error(t, err)
}
