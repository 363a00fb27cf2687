package sitemap

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/logger"
)

// Writer persists each sitemap document as an artifact pair: a raw .xml
// file and a gzip .xml.gz file with byte-identical decompressed content.
type Writer struct {
	rawDir string
	gzDir  string
	log    *logger.Logger
}

// NewWriter writes raw artifacts under rawDir and compressed ones under
// gzDir.
func NewWriter(rawDir, gzDir string) *Writer {
	return &Writer{
		rawDir: rawDir,
		gzDir:  gzDir,
		log:    logger.GetLogger().WithField("component", "sitemap_writer"),
	}
}

// Write renders doc and stores both artifacts under name (extension
// added here).
func (w *Writer) Write(name string, doc interface{}) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	rawPath := filepath.Join(w.rawDir, name+".xml")
	if err := os.WriteFile(rawPath, data, 0644); err != nil {
		return errs.IO("write", rawPath, err)
	}

	gzPath := filepath.Join(w.gzDir, name+".xml.gz")
	if err := writeGzip(gzPath, data); err != nil {
		return err
	}

	w.log.WithField("file", name+".xml.gz").Debug("Saved sitemap")
	return nil
}

func writeGzip(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.IO("create", path, err)
	}

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		f.Close()
		return errs.IO("write", path, err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return errs.IO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errs.IO("close", path, err)
	}
	return nil
}
