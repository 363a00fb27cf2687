package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/logger"
)

// URLRecord is one (url, sitemap key) pair emitted into a sitemap chunk.
type URLRecord struct {
	URL     string
	Sitemap string
}

// SkippedLocale is a registry entry whose bucket was empty after
// classification.
type SkippedLocale struct {
	Locale   string
	Homepage string
	Section  string
	Country  string
}

// Writer emits the audit CSVs for one generation run.
type Writer struct {
	dir  string
	date string // YYYYMMDD
	log  *logger.Logger
}

// NewWriter writes reports for the given run date into dir.
func NewWriter(dir, date string) *Writer {
	return &Writer{
		dir:  dir,
		date: date,
		log:  logger.GetLogger().WithField("component", "report_writer"),
	}
}

// WriteAllURLs writes every emitted regular (url, key) pair. The file is
// always produced, even when empty.
func (w *Writer) WriteAllURLs(records []URLRecord) (string, error) {
	name := fmt.Sprintf("all_urls_%s.csv", w.date)
	if err := w.writeURLRecords(name, records); err != nil {
		return "", err
	}
	w.log.WithField("count", len(records)).Info("Generated URL report")
	return name, nil
}

// WritePaginatedURLs writes every paginated (url, key) pair, but only when
// at least one exists. Returns "" when skipped.
func (w *Writer) WritePaginatedURLs(records []URLRecord) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("all_paginated_urls_%s.csv", w.date)
	if err := w.writeURLRecords(name, records); err != nil {
		return "", err
	}
	w.log.WithField("count", len(records)).Info("Generated paginated URL report")
	return name, nil
}

// WriteSkippedLocales writes the locales that produced no sitemaps, but
// only when at least one exists. Returns "" when skipped.
func (w *Writer) WriteSkippedLocales(skipped []SkippedLocale) (string, error) {
	if len(skipped) == 0 {
		return "", nil
	}

	name := fmt.Sprintf("skipped_locales_%s.csv", w.date)
	rows := [][]string{{"locale", "homepage", "section", "country"}}
	for _, s := range skipped {
		rows = append(rows, []string{s.Locale, s.Homepage, s.Section, s.Country})
	}
	if err := w.writeCSV(name, rows); err != nil {
		return "", err
	}
	w.log.WithField("count", len(skipped)).Info("Generated skipped locales report")
	return name, nil
}

func (w *Writer) writeURLRecords(name string, records []URLRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"URL", "Sitemap"})
	for _, r := range records {
		rows = append(rows, []string{r.URL, r.Sitemap})
	}
	return w.writeCSV(name, rows)
}

func (w *Writer) writeCSV(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errs.IO("create", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return errs.IO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errs.IO("close", path, err)
	}
	return nil
}
