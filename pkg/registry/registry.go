package registry

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"sitemap-gen/pkg/csvio"
	"sitemap-gen/pkg/errs"
	"sitemap-gen/pkg/logger"
)

// Entry is one homepage row: the locale's landing URL plus the columns it
// was keyed from.
type Entry struct {
	Key       string
	URL       string
	IsDefault bool
	Country   string
	Language  string
	Locale    string
	Section   string
}

// FileKey returns the identifier used in output file names.
func (e Entry) FileKey() string {
	if e.Section != "" {
		return e.Section + "_" + strings.ToUpper(e.Country)
	}
	return strings.ToUpper(e.Key)
}

// Registry maps locale keys to homepage entries, preserving the order keys
// first appeared in the CSV. A later row with the same key overwrites the
// entry but keeps its original position.
type Registry struct {
	keys    []string
	entries map[string]Entry
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// New builds a registry from entries in order, for programmatic callers.
func New(entries ...Entry) *Registry {
	r := newRegistry()
	for _, e := range entries {
		r.put(e)
	}
	return r
}

func (r *Registry) put(e Entry) {
	if _, ok := r.entries[e.Key]; !ok {
		r.keys = append(r.keys, e.Key)
	}
	r.entries[e.Key] = e
}

// Keys returns the locale keys in insertion order.
func (r *Registry) Keys() []string {
	return r.keys
}

// Get returns the entry for key.
func (r *Registry) Get(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Len returns the number of registered locales.
func (r *Registry) Len() int {
	return len(r.keys)
}

// BaseDomains returns the set of scheme://host origins covered by the
// registered homepages.
func (r *Registry) BaseDomains() map[string]struct{} {
	domains := make(map[string]struct{}, len(r.keys))
	for _, key := range r.keys {
		parsed, err := url.Parse(r.entries[key].URL)
		if err != nil {
			continue
		}
		domains[fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)] = struct{}{}
	}
	return domains
}

// Load parses the homepage CSV at path. Two column layouts are supported:
// Country+Language rows keyed "{language}-{country}" (or the bare language
// when Language Default is Y), and Section rows keyed by lowercased Locale
// or Section.
func Load(path string, log *logger.Logger) (*Registry, error) {
	f, err := csvio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := f.Header()
	if err != nil {
		return nil, err
	}
	log.WithField("columns", header).Info("Homepage CSV columns")

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	_, hasCountry := cols["Country"]
	_, hasLanguage := cols["Language"]
	_, hasSection := cols["Section"]

	if !(hasCountry && hasLanguage) && !hasSection {
		return nil, errs.Configurationf("homepage CSV must have either 'Country'+'Language' or 'Section' columns, found: %s", strings.Join(header, ", "))
	}

	reg := newRegistry()
	rowNum := 1
	for {
		record, err := f.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
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

		homepage := strings.TrimRight(field("Homepage"), "/")
		if homepage == "" {
			log.Warn(fmt.Sprintf("Row %d: Empty homepage URL, skipping", rowNum))
			continue
		}

		var entry Entry
		if hasCountry && hasLanguage {
			country := strings.ToLower(field("Country"))
			language := strings.ToLower(field("Language"))
			isDefault := field("Language Default") == "Y"

			key := language
			if !isDefault {
				key = language + "-" + country
			}
			entry = Entry{
				Key:       key,
				URL:       homepage,
				IsDefault: isDefault,
				Country:   country,
				Language:  language,
				Locale:    strings.ToLower(field("Locale")),
			}
		} else {
			section := strings.ReplaceAll(field("Section"), " ", "_")
			locale := strings.ToUpper(field("Locale"))

			key := strings.ToLower(section)
			if locale != "" {
				key = strings.ToLower(locale)
			}
			entry = Entry{
				Key:      key,
				URL:      homepage,
				Country:  locale,
				Language: locale,
				Locale:   locale,
				Section:  section,
			}
		}

		reg.put(entry)
		log.Debug(fmt.Sprintf("Row %d: Added homepage %s -> %s", rowNum, entry.Key, entry.URL))
	}

	if reg.Len() == 0 {
		return nil, errs.Validationf("no valid homepages found in CSV")
	}

	log.WithField("count", reg.Len()).Info("Parsed homepage registry")
	return reg, nil
}
