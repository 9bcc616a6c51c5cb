package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/custctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when it is missing, then initializes the
// session database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := r.config
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Wrote %s\n", configPath)

		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		if err := config.ApplyEnv(); err != nil {
			return err
		}
	} else {
		r.logger.Debug("config file exists", "path", configPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point api.base_url in %s at your backend (currently %s)\n", configPath, config.API.BaseURL)
	r.writePlain("2. Run 'custctl auth register' or 'custctl auth login'\n")
	return nil
}
