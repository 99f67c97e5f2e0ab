package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/urfave/cli/v3"
)

const exampleActors = `# Accounts available for join actions. Set ready = false to bench one.

[[actor]]
id = "primary"
label = "Main account"
ready = true
`

// Setup initializes the config file, database schema and actor roster.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Storage.Path)
	db, err := shared.OpenDatabase(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	r.writePlain("✓ Database ready at %s\n", config.Storage.Path)

	if _, err := os.Stat(config.Actors.File); err != nil {
		if err := os.MkdirAll(filepath.Dir(config.Actors.File), 0755); err != nil {
			return fmt.Errorf("failed to create actors directory: %w", err)
		}
		if err := os.WriteFile(config.Actors.File, []byte(exampleActors), 0644); err != nil {
			return fmt.Errorf("failed to write actors file: %w", err)
		}
		r.writePlain("✓ Created example actor roster at %s\n", config.Actors.File)
	}

	r.writePlainln("Setup complete. Run 'groupscout demo' in one terminal and 'groupscout tui' in another to try it out.")
	return nil
}
