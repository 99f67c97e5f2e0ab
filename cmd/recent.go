package main

import (
	"context"
	"fmt"

	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recent prints the recent-queries list, most recent first.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := shared.OpenDatabase(r.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	queries, err := repositories.NewRecentQueryRepository(db, r.config.Search.RecentQueryCap).List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(queries, false)
	}

	if len(queries) == 0 {
		return r.writePlain("No recent queries.\n")
	}
	for i, query := range queries {
		r.writePlain("%2d. %s\n", i+1, query)
	}
	return nil
}
