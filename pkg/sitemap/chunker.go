package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"

	"sitemap-gen/pkg/logger"
)

// Limits from the sitemap protocol: at most 50 000 URLs and 50MB of
// uncompressed XML per file.
const (
	MaxURLsPerSitemap = 50000
	MaxSitemapBytes   = 50 * 1024 * 1024

	// Safety cap on runaway sequences.
	maxChunksPerSequence = 100

	// The size limit is checked on 100-entry boundaries, so chunk breaks
	// land where they always have.
	sizeCheckEvery = 100
)

// Chunk is one size/count-bounded sitemap document.
type Chunk struct {
	Sequence int // 1-based
	URLs     []string
}

// Chunker partitions ordered URL sequences into protocol-sized chunks.
type Chunker struct {
	maxURLs  int
	maxBytes int
	log      *logger.Logger
}

// NewChunker returns a chunker with the given limits; zero values select
// the protocol defaults.
func NewChunker(maxURLs, maxBytes int) *Chunker {
	if maxURLs <= 0 {
		maxURLs = MaxURLsPerSitemap
	}
	if maxBytes <= 0 {
		maxBytes = MaxSitemapBytes
	}
	return &Chunker{
		maxURLs:  maxURLs,
		maxBytes: maxBytes,
		log:      logger.GetLogger().WithField("component", "chunker"),
	}
}

// Split partitions urls into chunks. When homepage is non-empty this is a
// regular sequence: the homepage (normalized to a trailing slash) becomes
// entry 0 of the first chunk and is suppressed wherever else it appears in
// the sequence. Document size is tracked as a running estimate of the
// rendered XML rather than by re-serializing the partial document.
func (c *Chunker) Split(urls []string, homepage string) []Chunk {
	var normalizedHome string
	if homepage != "" {
		normalizedHome = homepage
		if !strings.HasSuffix(normalizedHome, "/") {
			normalizedHome += "/"
		}
	}

	var chunks []Chunk
	i := 0
	for {
		chunk := Chunk{Sequence: len(chunks) + 1}
		size := baseDocSize
		added := 0

		if len(chunks) == 0 && normalizedHome != "" {
			chunk.URLs = append(chunk.URLs, normalizedHome)
			size += entrySize(normalizedHome)
			added++
		}

		for i < len(urls) && len(chunk.URLs) < c.maxURLs {
			u := urls[i]
			i++
			if normalizedHome != "" && (u == homepage || u == normalizedHome) {
				continue
			}

			chunk.URLs = append(chunk.URLs, u)
			size += entrySize(u)
			added++

			if len(chunk.URLs)%sizeCheckEvery == 0 && size > c.maxBytes {
				c.log.WithFields(map[string]interface{}{
					"urls":  len(chunk.URLs),
					"bytes": size,
				}).Warn("Sitemap size limit reached, rolling to next chunk")
				break
			}
		}

		// A fill that added nothing means the rest of the input is
		// suppressed duplicates; emitting would loop forever.
		if added == 0 {
			break
		}
		chunks = append(chunks, chunk)

		if i >= len(urls) {
			break
		}
		if len(chunks) >= maxChunksPerSequence {
			c.log.WithField("remaining", len(urls)-i).Warn(fmt.Sprintf("Reached maximum of %d sitemaps for one sequence, truncating input", maxChunksPerSequence))
			break
		}
	}
	return chunks
}

// EstimateSize returns the running-estimate byte size of a chunk's
// rendered document. It matches len(Marshal(NewURLSet(urls))) exactly for
// non-empty chunks.
func EstimateSize(urls []string) int {
	size := baseDocSize
	for _, u := range urls {
		size += entrySize(u)
	}
	return size
}

var baseDocSize = len(xml.Header) +
	len(`<urlset xmlns="`+Namespace+`">`) + 1 +
	len(`</urlset>`) + 1

func entrySize(loc string) int {
	const perEntryOverhead = len("  <url>\n") + len("    <loc>") + len("</loc>\n") + len("  </url>\n")
	return perEntryOverhead + escapedLen(loc)
}
