package csvio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitemap-gen/pkg/errs"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpen_PlainFile(t *testing.T) {
	path := writeFile(t, "Homepage,Country\nhttps://example.com,US\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{"Homepage", "Country"}, header)

	row, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com", "US"}, row)

	_, err = f.Read()
	assert.Equal(t, io.EOF, err)
}

func TestOpen_StripsByteOrderMark(t *testing.T) {
	path := writeFile(t, "\xEF\xBB\xBFHomepage,Country\nhttps://example.com,US\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.Header()
	require.NoError(t, err)
	assert.Equal(t, "Homepage", header[0])
}

func TestOpen_SkipsSeparatorDeclaration(t *testing.T) {
	path := writeFile(t, "sep=,\nHomepage,Country\nhttps://example.com,US\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{"Homepage", "Country"}, header)

	row, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", row[0])
}

func TestOpen_SeparatorDeclarationParsesIdentically(t *testing.T) {
	plain := writeFile(t, "Homepage,Country\nhttps://example.com,US\n")
	declared := writeFile(t, "sep=,\nHomepage,Country\nhttps://example.com,US\n")

	readAll := func(path string) [][]string {
		f, err := Open(path)
		require.NoError(t, err)
		defer f.Close()

		var rows [][]string
		header, err := f.Header()
		require.NoError(t, err)
		rows = append(rows, header)
		for {
			row, err := f.Read()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			rows = append(rows, row)
		}
		return rows
	}

	assert.Equal(t, readAll(plain), readAll(declared))
}

func TestHeader_LeakedSeparatorDeclaration(t *testing.T) {
	// A leading space keeps the declaration from being recognized as a
	// declaration line, so it leaks into the header.
	path := writeFile(t, " sep=;\nHomepage,Country\n")

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Header()
	require.Error(t, err)

	var cfgErr *errs.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "resave")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var ioErr *errs.IoError
	assert.True(t, errors.As(err, &ioErr))
}
