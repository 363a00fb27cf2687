package classifier

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"sitemap-gen/pkg/csvio"
	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/logger"
	"sitemap-gen/pkg/registry"
)

// Page is one indexable URL and its normalized path signature.
type Page struct {
	URL         string
	PathPattern string
}

// Result is the outcome of classifying a URL inventory: locale buckets in
// input row order plus the per-category counters.
type Result struct {
	Pages         map[string][]Page
	Indexable     int
	NonIndexable  int
	DomainSkipped int
	RowErrors     []*errs.RowError
}

// Classify parses the URL inventory CSV at path, drops non-indexable and
// out-of-domain rows, and assigns each surviving URL to the first registry
// locale whose homepage path prefixes it. URLs on a registered domain that
// match no homepage path fall back to a bucket keyed by the lowercased
// origin.
//
// Malformed rows are collected, logged and skipped; they never abort the
// batch.
func Classify(path string, reg *registry.Registry, log *logger.Logger) (*Result, error) {
	f, err := csvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := f.Header()
	if err != nil {
		return nil, err
	}
	log.WithField("columns", header).Info("Inventory CSV columns")

	urlColumn, ok := FindURLColumn(header)
	if !ok {
		return nil, errs.Configurationf("could not find URL column, available columns: %s", strings.Join(header, ", "))
	}
	log.WithField("column", urlColumn).Info("Using URL column")

	indexColumn, hasIndexColumn := FindIndexabilityColumn(header)
	if hasIndexColumn {
		log.WithField("column", indexColumn).Info("Using indexability column")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	domains := reg.BaseDomains()
	log.WithField("domains", len(domains)).Info("Base domains to process")

	// Homepage paths are matched in registry order: first match wins.
	type homepagePath struct {
		key  string
		path string
	}
	paths := make([]homepagePath, 0, reg.Len())
	for _, key := range reg.Keys() {
		entry, _ := reg.Get(key)
		parsed, err := url.Parse(entry.URL)
		if err != nil {
			continue
		}
		paths = append(paths, homepagePath{key: key, path: strings.TrimRight(parsed.Path, "/")})
	}

	res := &Result{Pages: make(map[string][]Page)}
	rowNum := 1
	for {
		record, err := f.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErr := &errs.RowError{Row: rowNum, Err: err}
			res.RowErrors = append(res.RowErrors, rowErr)
			log.WithError(err).Warn(fmt.Sprintf("Row %d: unreadable row, skipping", rowNum))
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		rawURL := strings.TrimSpace(field(urlColumn))
		if rawURL == "" {
			continue
		}

		if hasIndexColumn && excludedByIndexability(field(indexColumn)) {
			res.NonIndexable++
			continue
		}

		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Host == "" {
			if err == nil {
				err = fmt.Errorf("URL missing host: %s", rawURL)
			}
			rowErr := &errs.RowError{Row: rowNum, Err: err}
			res.RowErrors = append(res.RowErrors, rowErr)
			log.WithError(err).Warn(fmt.Sprintf("Row %d: error parsing URL, skipping", rowNum))
			continue
		}

		origin := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
		if _, ok := domains[origin]; !ok {
			res.DomainSkipped++
			continue
		}

		key := strings.ToLower(origin)
		for _, hp := range paths {
			if strings.HasPrefix(parsed.Path, hp.path) {
				key = hp.key
				break
			}
		}

		res.Pages[key] = append(res.Pages[key], Page{
			URL:         rawURL,
			PathPattern: ExtractPathPattern(rawURL),
		})
		res.Indexable++

		if rowNum%1000 == 0 {
			log.Debug(fmt.Sprintf("Processed %d rows, %d indexable URLs", rowNum, res.Indexable))
		}
	}

	log.WithFields(map[string]interface{}{
		"indexable":      res.Indexable,
		"non_indexable":  res.NonIndexable,
		"domain_skipped": res.DomainSkipped,
		"row_errors":     len(res.RowErrors),
	}).Info("Inventory parsing complete")

	return res, nil
}

// excludedByIndexability applies the inventory's indexability verdict: a
// row is dropped when the value is an explicit negative, or pairs "index"
// with a negation.
func excludedByIndexability(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))

	switch v {
	case "false", "no", "n", "0", "":
		return true
	}
	if strings.Contains(v, "non") || strings.Contains(v, "not") ||
		strings.Contains(v, "no index") || strings.Contains(v, "noindex") {
		return true
	}
	if strings.Contains(v, "index") {
		for _, neg := range []string{"non", "not", "no "} {
			if strings.Contains(v, neg) {
				return true
			}
		}
	}
	return false
}
