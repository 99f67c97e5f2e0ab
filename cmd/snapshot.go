package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/urfave/cli/v3"
)

// SnapshotShow prints a summary of the persisted session snapshot.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
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
	if errors.Is(err, shared.ErrSnapshotMissing) {
		return r.writePlain("No snapshot stored.\n")
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap, cmd.Bool("pretty"))
	}

	age := ""
	if ttl := r.config.Search.SnapshotTTL(); ttl > 0 {
		age = "fresh"
		if time.Since(snap.SavedAt) > ttl {
			age = "stale"
		}
	}
	r.writePlain("Query:   %s\n", snap.Query)
	r.writePlain("Items:   %d (%d new, %d known)\n", len(snap.Items), snap.NewCount, snap.KnownCount)
	r.writePlain("Saved:   %s (%s)\n", snap.SavedAt.Format("2006-01-02 15:04:05"), age)
	return nil
}

// SnapshotClear deletes the persisted session snapshot.
func (r *Runner) SnapshotClear(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, err := shared.OpenDatabase(r.config.Storage)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := repositories.NewSnapshotRepository(db).Clear(); err != nil {
		return err
	}
	return r.writePlain("Snapshot cleared.\n")
}
