package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/custctl/internal/repositories"
	"github.com/desertthunder/custctl/internal/services"
	"github.com/desertthunder/custctl/internal/session"
	"github.com/desertthunder/custctl/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

const defaultConfigPath = "config.toml"

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	configPath := defaultConfigPath
	if p := os.Getenv("CUSTCTL_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	var store session.Store
	var exports ExportHistory
	if db, err := shared.OpenDatabase(ctx, config.Database); err == nil {
		defer db.Close()
		store = repositories.NewSessionRepository(db)
		exports = repositories.NewExportRepository(db)
	} else {
		logger.Warn("session database unavailable, sign-in will not persist", "error", err)
	}

	sess := session.New(store)
	if err := sess.Load(ctx); err != nil {
		logger.Warn("failed to load session", "error", err)
	}

	api := services.NewAPIService(config.API.BaseURL, &http.Client{Timeout: config.API.Timeout()})
	if config.API.RateLimit > 0 {
		api.SetLimiter(rate.NewLimiter(rate.Limit(config.API.RateLimit), max(config.API.Burst, 1)))
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client: services.NewCustomerService(services.CustomerServiceOpts{
			API:          api,
			DownloadPath: config.API.DownloadPath,
			Logger:       logger,
		}),
		Session: sess,
		Exports: exports,
		Logger:  logger,
	})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Error("not signed in, run 'custctl auth login' first")
			os.Exit(1)
		case errors.Is(err, shared.ErrAuthFailed):
			logger.Error("authentication failed, run 'custctl auth login' again", "error", err)
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "custctl",
		Usage:    "Manage customers from the terminal",
		Version:  "0.1.0",
		Commands: r.register(),
	}
}
