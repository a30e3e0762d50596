package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/discq/internal/repositories"
	"github.com/desertthunder/discq/internal/services"
	"github.com/desertthunder/discq/internal/shared"
	"github.com/desertthunder/discq/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var service services.Service
	var oauth services.OAuthService
	if config.Credentials.Discogs.HasConsumer() {
		if svc, err := services.NewDiscogsService(config.Credentials.Discogs.Map()); err == nil {
			service = svc
			oauth = svc
		}
	}

	var cacher tasks.ReleaseCacher
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			cacher = repositories.NewReleaseRepository(db)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: service,
		OAuth:   oauth,
		Cacher:  cacher,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "discq",
		Usage:    "Export your Discogs collection to QR Factory CSV",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
