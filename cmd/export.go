package main

import (
	"context"
	"fmt"

	"github.com/groupscout/groupscout/internal/formatter"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/groupscout/groupscout/internal/view"
	"github.com/urfave/cli/v3"
)

// Export writes the stored snapshot to a delimited file, optionally filtered
// the same way the TUI filters its view.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := shared.OpenDatabase(r.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	snap, err := repositories.NewSnapshotRepository(db).Load()
	if err != nil {
		return fmt.Errorf("no completed search to export: %w", err)
	}

	filters := view.Filters{
		MinMembers: int(cmd.Int("min-members")),
	}
	if kind := cmd.String("kind"); kind != "" {
		parsed := models.ParseItemKind(kind)
		filters.Kind = &parsed
	}
	if cmd.Bool("joined") {
		filters.Membership = view.JoinedBucket
	}

	items := view.Apply(snap.Items, filters)
	path, err := formatter.WriteExport(items, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	return r.writePlain("Exported %d of %d items for %q to %s\n", len(items), len(snap.Items), snap.Query, path)
}
