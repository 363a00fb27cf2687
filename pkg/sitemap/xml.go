package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Namespace is the sitemaps.org 0.9 protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlEntry struct {
	Loc string `xml:"loc"`
}

// URLSet is a sitemap document: one url/loc element per page.
type URLSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// NewURLSet builds a urlset document for the given locations.
func NewURLSet(locs []string) *URLSet {
	doc := &URLSet{Xmlns: Namespace}
	doc.URLs = make([]urlEntry, 0, len(locs))
	for _, loc := range locs {
		doc.URLs = append(doc.URLs, urlEntry{Loc: loc})
	}
	return doc
}

type sitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Index is a sitemap index document: one sitemap/loc+lastmod element per
// referenced sitemap file.
type Index struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// placeholderBase stands in for sequences that have no homepage to anchor
// index locations on (paginated and master sitemaps).
const placeholderBase = "https://yourdomain.com"

// NewIndex builds a sitemapindex referencing each chunk file's expected
// compressed URL, annotated with the run date.
func NewIndex(baseURL string, fileNames []string, lastMod string) *Index {
	if baseURL == "" {
		baseURL = placeholderBase
	}
	doc := &Index{Xmlns: Namespace}
	for _, name := range fileNames {
		doc.Sitemaps = append(doc.Sitemaps, sitemapRef{
			Loc:     fmt.Sprintf("%s/%s.xml.gz", baseURL, name),
			LastMod: lastMod,
		})
	}
	return doc
}

// Marshal renders a document pretty-printed with the XML declaration and a
// trailing newline.
func Marshal(doc interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap document: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// escapedLen returns the byte length of s after XML text escaping.
func escapedLen(s string) int {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s)) //nolint:errcheck // bytes.Buffer cannot fail
	return buf.Len()
}
