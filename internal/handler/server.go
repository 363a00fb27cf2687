package handler

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"sitemap-gen/internal/config"
	"sitemap-gen/internal/service"
	"sitemap-gen/pkg/archive"
	"sitemap-gen/pkg/logger"
	"sitemap-gen/pkg/progress"
)

// Server is the thin HTTP boundary around the generator: uploads in,
// progress polling, zip downloads out. One run at a time.
type Server struct {
	app *fiber.App
	cfg *config.Config
	log *logger.Logger

	mu      sync.Mutex
	tracker *progress.Tracker
}

func New(cfg *config.Config) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:   "sitemap-gen",
			BodyLimit: 512 * 1024 * 1024, // crawl exports get large
		}),
		cfg:     cfg,
		log:     logger.GetLogger().WithField("component", "http"),
		tracker: progress.NewTracker(),
	}

	s.app.Use(recover.New())

	s.app.Post("/generate", s.handleGenerate)
	s.app.Get("/progress", s.handleProgress)
	s.app.Get("/files", s.handleFiles)
	s.app.Get("/download/reports/:name", s.handleReport)
	s.app.Get("/download/:kind", s.handleDownload)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.log.WithField("addr", addr).Info("HTTP server listening")
	return s.app.Listen(addr)
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	homepagePath, err := s.resolveInput(c, "homepage_file", "homepage_select", "homepage")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	internalPath, err := s.resolveInput(c, "internal_file", "internal_select", "internal")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	if s.tracker.Running() {
		s.mu.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a generation run is already in progress"})
	}
	tracker := progress.NewTracker()
	s.tracker = tracker
	s.mu.Unlock()

	runID := uuid.New().String()
	gen := service.NewGenerator(s.cfg, tracker)
	log := s.log.WithField("run_id", runID)
	log.WithFields(map[string]interface{}{
		"homepage":  homepagePath,
		"inventory": internalPath,
	}).Info("Starting generation run")

	go func() {
		if _, err := gen.Run(homepagePath, internalPath); err != nil {
			log.WithError(err).Error("Generation run failed")
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"run_id": runID,
		"status": "started",
	})
}

func (s *Server) handleProgress(c *fiber.Ctx) error {
	s.mu.Lock()
	tracker := s.tracker
	s.mu.Unlock()
	return c.JSON(tracker.Snapshot())
}

func (s *Server) handleFiles(c *fiber.Ctx) error {
	entries, err := os.ReadDir(s.cfg.Storage.UploadDir)
	if err != nil && !os.IsNotExist(err) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	homepage := []string{}
	internal := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(entry.Name(), "_homepage.csv"):
			homepage = append(homepage, entry.Name())
		case strings.HasSuffix(entry.Name(), "_internal.csv"):
			internal = append(internal, entry.Name())
		}
	}
	return c.JSON(fiber.Map{
		"homepage_files": homepage,
		"internal_files": internal,
	})
}

var downloadKinds = map[string]struct {
	dir     func(service.Layout) string
	zipName string
}{
	"locale":        {service.Layout.LocaleGz, "locale_sitemaps_compressed.zip"},
	"locale-raw":    {service.Layout.LocaleRaw, "locale_sitemaps_raw.zip"},
	"master":        {service.Layout.MasterGz, "master_sitemaps_compressed.zip"},
	"master-raw":    {service.Layout.MasterRaw, "master_sitemaps_raw.zip"},
	"paginated":     {service.Layout.PaginatedGz, "paginated_sitemaps_compressed.zip"},
	"paginated-raw": {service.Layout.PaginatedRaw, "paginated_sitemaps_raw.zip"},
}

func (s *Server) handleDownload(c *fiber.Ctx) error {
	kind, ok := downloadKinds[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown download kind"})
	}

	layout := service.Layout{Root: s.cfg.Storage.OutputDir}
	dir := kind.dir(layout)
	if _, err := os.Stat(dir); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no output generated yet"})
	}

	log := s.log
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", kind.zipName))
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := archive.StreamFolder(w, dir); err != nil {
			log.WithError(err).Error("Failed to stream archive")
		}
	}))
	return nil
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	date := time.Now().Format("20060102")
	var name string
	switch c.Params("name") {
	case "all":
		name = fmt.Sprintf("all_urls_%s.csv", date)
	case "paginated":
		name = fmt.Sprintf("all_paginated_urls_%s.csv", date)
	case "skipped":
		name = fmt.Sprintf("skipped_locales_%s.csv", date)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown report"})
	}

	layout := service.Layout{Root: s.cfg.Storage.OutputDir}
	path := filepath.Join(layout.Reports(), name)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("no %s report found", c.Params("name"))})
	}
	return c.Download(path, name)
}

// resolveInput returns the path of the CSV to use for one input slot:
// either a fresh multipart upload stored under a dated, sanitized name, or
// a previously uploaded file picked by its base name.
func (s *Server) resolveInput(c *fiber.Ctx, fileField, selectField, kind string) (string, error) {
	if fh, err := c.FormFile(fileField); err == nil && fh != nil && strings.TrimSpace(fh.Filename) != "" {
		base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
		name := fmt.Sprintf("%s_%s_%s.csv", time.Now().Format("20060102"), sanitizeFilename(base), kind)
		if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0755); err != nil {
			return "", err
		}
		path := filepath.Join(s.cfg.Storage.UploadDir, name)
		if err := c.SaveFile(fh, path); err != nil {
			return "", fmt.Errorf("failed to save uploaded %s file: %w", kind, err)
		}
		return path, nil
	}

	if sel := strings.TrimSpace(c.FormValue(selectField)); sel != "" {
		// Base name only: selections must not escape the upload folder.
		path := filepath.Join(s.cfg.Storage.UploadDir, filepath.Base(sel))
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("selected %s file does not exist: %s", kind, sel)
		}
		return path, nil
	}

	return "", fmt.Errorf("no %s file selected or uploaded", kind)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func sanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
