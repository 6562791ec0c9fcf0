// Command collectstatic publishes the embedded static assets to the
// configured storage backend, writing both logical and content-hashed
// copies plus a manifest mapping one to the other. With an S3 bucket
// configured it uploads there; otherwise it writes to a local directory.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cobaemon/portfolio/internal/webapp"
	"github.com/cobaemon/portfolio/pkg/config"
	"github.com/cobaemon/portfolio/pkg/file"
	"github.com/cobaemon/portfolio/pkg/logger"
)

type collectConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	// OutputDir receives the assets when no S3 bucket is configured.
	OutputDir string `env:"STATIC_OUTPUT_DIR" envDefault:"staticfiles"`
	// BaseURL is the public prefix local files are served from.
	BaseURL string `env:"STATIC_BASE_URL" envDefault:"/static/"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg collectConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "collectstatic"))

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "collectstatic failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg collectConfig, log *slog.Logger) error {
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	manifest, err := webapp.CollectStatic(ctx, webapp.StaticFS(), store)
	if err != nil {
		return err
	}

	for logical, hashed := range manifest.Paths {
		log.InfoContext(ctx, "published asset",
			slog.String("path", logical),
			slog.String("hashed", hashed),
			slog.String("url", store.URL(hashed)))
	}
	log.InfoContext(ctx, "collectstatic complete",
		slog.Int("assets", len(manifest.Paths)))
	return nil
}

func newStorage(ctx context.Context, cfg collectConfig) (file.Storage, error) {
	var s3Cfg file.S3Config
	config.MustLoad(&s3Cfg)

	if s3Cfg.Bucket != "" {
		return file.NewS3Storage(ctx, s3Cfg)
	}
	return file.NewLocalStorage(cfg.OutputDir, cfg.BaseURL)
}
