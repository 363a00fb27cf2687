package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sitemap-gen/pkg/errs"
)

// File reads CSV exports the way spreadsheet tools produce them: an
// optional byte-order mark and an optional leading "sep=..." declaration
// line are tolerated and skipped.
type File struct {
	f      *os.File
	reader *csv.Reader
}

// Open prepares path for record-by-record reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IO("open", path, err)
	}

	// BOMOverride strips a UTF-8 BOM and transparently decodes UTF-16
	// exports that declare one.
	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	buf := bufio.NewReader(decoded)

	if err := skipSeparatorLine(buf); err != nil {
		f.Close()
		return nil, errs.IO("read", path, err)
	}

	r := csv.NewReader(buf)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return &File{f: f, reader: r}, nil
}

// Header reads the header record and verifies the separator declaration
// was actually consumed; spreadsheet exports with unusual quoting can leak
// it into the first cell.
func (f *File) Header() ([]string, error) {
	header, err := f.reader.Read()
	if err != nil {
		return nil, err
	}
	if len(header) > 0 && strings.Contains(strings.ToLower(header[0]), "sep=") {
		return nil, errs.Configurationf("CSV parsing error: sep= declaration not properly skipped. Please resave your CSV file.")
	}
	return header, nil
}

// Read returns the next record. io.EOF signals the end of the file.
func (f *File) Read() ([]string, error) {
	return f.reader.Read()
}

func (f *File) Close() error {
	return f.f.Close()
}

func skipSeparatorLine(buf *bufio.Reader) error {
	peek, err := buf.Peek(4)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	if string(peek) != "sep=" {
		return nil
	}
	if _, err := buf.ReadString('\n'); err != nil && err != io.EOF {
		return err
	}
	return nil
}
