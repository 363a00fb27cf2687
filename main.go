package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"sitemap-gen/internal/config"
	"sitemap-gen/internal/handler"
	"sitemap-gen/internal/service"
	"sitemap-gen/pkg/logger"
	"sitemap-gen/pkg/progress"
)

func main() {
	app := &cli.App{
		Name:  "sitemap-gen",
		Usage: "generate locale-partitioned sitemaps from a homepage registry and a crawled-URL inventory",
		Commands: []*cli.Command{
			generateCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "run one generation batch from the command line",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:     "homepages",
				Usage:    "homepage/locale registry CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "inventory",
				Usage:    "crawled-URL inventory CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "output directory root (overrides config)",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if out := c.String("output"); out != "" {
				cfg.Storage.OutputDir = out
			}

			tracker := progress.NewTracker()
			gen := service.NewGenerator(cfg, tracker)
			summary, err := gen.Run(c.String("homepages"), c.String("inventory"))
			if err != nil {
				return err
			}

			fmt.Printf("Regular URLs:    %d\n", summary.RegularURLs)
			fmt.Printf("Paginated URLs:  %d\n", summary.PaginatedURLs)
			fmt.Printf("Master sitemaps: %d\n", summary.MasterChunks)
			fmt.Printf("Skipped locales: %d\n", summary.SkippedLocales)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the upload/progress/download HTTP server",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (overrides config)",
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if host := c.String("host"); host != "" {
				cfg.Server.Host = host
			}
			if port := c.Int("port"); port != 0 {
				cfg.Server.Port = port
			}

			return handler.New(cfg).Listen()
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "configuration file (yaml)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.NewManager().Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if c.Bool("debug") {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))

	return cfg, nil
}
