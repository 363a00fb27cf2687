package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sitemap-gen/internal/config"
	"sitemap-gen/pkg/classifier"
	"sitemap-gen/pkg/logger"
	"sitemap-gen/pkg/progress"
	"sitemap-gen/pkg/registry"
	"sitemap-gen/pkg/report"
	"sitemap-gen/pkg/sitemap"
)

// Generator runs one full sitemap batch: registry, classification,
// per-locale chunking, master aggregation and reports. It runs
// single-threaded and synchronously; on failure, files already flushed
// stay on disk.
type Generator struct {
	cfg     *config.Config
	layout  Layout
	tracker *progress.Tracker
	log     *logger.Logger
	now     func() time.Time
}

// Summary describes what a completed run produced.
type Summary struct {
	RegularURLs    int
	PaginatedURLs  int
	MasterChunks   int
	SkippedLocales int
}

// NewGenerator wires a generator to its configuration and the run's
// progress tracker.
func NewGenerator(cfg *config.Config, tracker *progress.Tracker) *Generator {
	return &Generator{
		cfg:     cfg,
		layout:  Layout{Root: cfg.Storage.OutputDir},
		tracker: tracker,
		log:     logger.GetLogger().WithField("component", "generator"),
		now:     time.Now,
	}
}

// Run executes the batch for the two input CSVs. Row-level problems are
// skipped and counted; configuration, validation and write failures abort
// the run, leave a timestamped entry in the error log and surface one
// message on the tracker.
func (g *Generator) Run(homepagePath, inventoryPath string) (*Summary, error) {
	g.tracker.Set("Starting", 0)

	if err := g.ensureDirs(); err != nil {
		return nil, g.fail(err)
	}

	reg, err := registry.Load(homepagePath, g.log)
	if err != nil {
		return nil, g.fail(fmt.Errorf("error parsing homepage CSV: %w", err))
	}

	res, err := classifier.Classify(inventoryPath, reg, g.log)
	if err != nil {
		return nil, g.fail(fmt.Errorf("error parsing inventory CSV: %w", err))
	}

	if res.Indexable == 0 {
		// Fatal but logged: the run carries on so the skipped-locale
		// report still reflects the registry.
		msg := "No indexable pages found! Check your CSV format and indexability column."
		g.log.Error(msg)
		g.writeErrorLog(msg)
		g.tracker.SetError(msg)
	}

	now := g.now()
	date := now.Format("20060102")
	lastMod := now.Format("2006-01-02")

	chunker := sitemap.NewChunker(g.cfg.Sitemap.MaxURLs, g.cfg.Sitemap.MaxSizeMB*1024*1024)
	localeWriter := sitemap.NewWriter(g.layout.LocaleRaw(), g.layout.LocaleGz())
	paginatedWriter := sitemap.NewWriter(g.layout.PaginatedRaw(), g.layout.PaginatedGz())
	masterWriter := sitemap.NewWriter(g.layout.MasterRaw(), g.layout.MasterGz())

	var (
		allURLs       []report.URLRecord
		paginatedURLs []report.URLRecord
		masterURLs    []string
		skipped       []report.SkippedLocale
	)

	keys := reg.Keys()
	total := len(keys)
	for i, key := range keys {
		entry, _ := reg.Get(key)
		g.tracker.Set("Processing "+key, int(float64(i)/float64(total+1)*90))
		g.log.Info(fmt.Sprintf("Processing %s (%d/%d)", key, i+1, total))

		pages := res.Pages[key]
		if len(pages) == 0 {
			g.log.Warn(fmt.Sprintf("No pages found for %s, skipping sitemap generation", key))
			skipped = append(skipped, report.SkippedLocale{
				Locale:   key,
				Homepage: entry.URL,
				Section:  entry.Section,
				Country:  entry.Country,
			})
			continue
		}

		regular, paginated := classifier.SplitPagination(pages)
		fileKey := entry.FileKey()
		g.log.WithFields(map[string]interface{}{
			"locale":    key,
			"regular":   len(regular),
			"paginated": len(paginated),
		}).Info("Split locale bucket")

		if len(regular) > 0 {
			chunks := chunker.Split(pageURLs(regular), entry.URL)
			names, err := g.writeChunks(localeWriter, chunks, "sitemap", date, fileKey, len(regular) > g.cfg.Sitemap.MaxURLs)
			if err != nil {
				return nil, g.fail(err)
			}
			for _, chunk := range chunks {
				for _, u := range chunk.URLs {
					allURLs = append(allURLs, report.URLRecord{URL: u, Sitemap: fileKey})
					masterURLs = append(masterURLs, u)
				}
			}
			if len(chunks) > 1 {
				idx := sitemap.NewIndex(entry.URL, names, lastMod)
				if err := localeWriter.Write(fmt.Sprintf("sitemap_index_%s_%s", date, fileKey), idx); err != nil {
					return nil, g.fail(err)
				}
			}
		}

		if len(paginated) > 0 {
			chunks := chunker.Split(pageURLs(paginated), "")
			names, err := g.writeChunks(paginatedWriter, chunks, "paginated_sitemap", date, fileKey, len(paginated) > g.cfg.Sitemap.MaxURLs)
			if err != nil {
				return nil, g.fail(err)
			}
			for _, chunk := range chunks {
				for _, u := range chunk.URLs {
					paginatedURLs = append(paginatedURLs, report.URLRecord{URL: u, Sitemap: fileKey + "_paginated"})
				}
			}
			if len(chunks) > 1 {
				idx := sitemap.NewIndex(g.cfg.Sitemap.IndexBaseURL, names, lastMod)
				if err := paginatedWriter.Write(fmt.Sprintf("paginated_sitemap_index_%s_%s", date, fileKey), idx); err != nil {
					return nil, g.fail(err)
				}
			}
		}
	}

	g.tracker.Set("Generating master sitemaps", 90)
	g.log.WithField("urls", len(masterURLs)).Info("Generating master sitemaps")

	masterChunks := 0
	if len(masterURLs) > 0 {
		chunks := chunker.Split(masterURLs, "")
		names, err := g.writeChunks(masterWriter, chunks, "master_sitemap", date, "", len(masterURLs) > g.cfg.Sitemap.MaxURLs)
		if err != nil {
			return nil, g.fail(err)
		}
		if len(chunks) > 1 {
			idx := sitemap.NewIndex(g.cfg.Sitemap.IndexBaseURL, names, lastMod)
			if err := masterWriter.Write(fmt.Sprintf("master_sitemap_index_%s", date), idx); err != nil {
				return nil, g.fail(err)
			}
		}
		masterChunks = len(chunks)
	}

	rw := report.NewWriter(g.layout.Reports(), date)
	if _, err := rw.WriteAllURLs(allURLs); err != nil {
		return nil, g.fail(err)
	}
	if _, err := rw.WritePaginatedURLs(paginatedURLs); err != nil {
		return nil, g.fail(err)
	}
	if _, err := rw.WriteSkippedLocales(skipped); err != nil {
		return nil, g.fail(err)
	}

	g.tracker.Complete()
	summary := &Summary{
		RegularURLs:    len(allURLs),
		PaginatedURLs:  len(paginatedURLs),
		MasterChunks:   masterChunks,
		SkippedLocales: len(skipped),
	}
	g.log.WithFields(map[string]interface{}{
		"regular_urls":    summary.RegularURLs,
		"paginated_urls":  summary.PaginatedURLs,
		"master_chunks":   summary.MasterChunks,
		"skipped_locales": summary.SkippedLocales,
	}).Info("Sitemap generation complete")

	return summary, nil
}

// writeChunks persists each chunk under its file name and returns the
// names in sequence order. The _{n} suffix is omitted only for a single
// unsplit chunk; it is present from chunk 1 when the sequence was already
// known to exceed the URL cap.
func (g *Generator) writeChunks(w *sitemap.Writer, chunks []sitemap.Chunk, prefix, date, key string, forceSuffix bool) ([]string, error) {
	names := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		name := chunkFileName(prefix, date, key, chunk.Sequence, forceSuffix || chunk.Sequence > 1)
		if err := w.Write(name, sitemap.NewURLSet(chunk.URLs)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func chunkFileName(prefix, date, key string, seq int, suffixed bool) string {
	name := prefix + "_" + date
	if key != "" {
		name += "_" + key
	}
	if suffixed {
		name += fmt.Sprintf("_%d", seq)
	}
	return name
}

func pageURLs(pages []classifier.Page) []string {
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	return urls
}

func (g *Generator) ensureDirs() error {
	dirs := append(g.layout.All(), g.cfg.Storage.UploadDir, g.cfg.Storage.LogDir)
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (g *Generator) fail(err error) error {
	g.log.WithError(err).Error("Run aborted")
	g.writeErrorLog(err.Error())
	g.tracker.Fail(err.Error())
	return err
}

// writeErrorLog appends a timestamped entry to a dated error log file.
func (g *Generator) writeErrorLog(msg string) {
	if err := os.MkdirAll(g.cfg.Storage.LogDir, 0755); err != nil {
		g.log.WithError(err).Error("Failed to create log directory")
		return
	}
	now := g.now()
	path := filepath.Join(g.cfg.Storage.LogDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		g.log.WithError(err).Error("Failed to open error log")
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s: %s\n", now.Format(time.RFC3339), msg)
}
