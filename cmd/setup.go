package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when it is missing and migrates the token database.
//
// A missing file has already been replaced by [shared.DefaultConfig], which parses the same template.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", r.palette.Success("Created "+configPath))
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.writePlain("%s\n", r.palette.Success("Database ready at "+r.config.Database.Path))
	if !r.config.Credentials.Spotify.Valid() {
		r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("Add your client credentials to %s, then run: spotx auth login", configPath)))
	}
	return nil
}
