package main

import (
	"context"
	"fmt"

	"github.com/groupscout/groupscout/internal/actors"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/urfave/cli/v3"
)

// ActorsList prints the configured accounts and their readiness.
func (r *Runner) ActorsList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	directory, err := actors.NewDirectory(r.config.Actors.File, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load actor roster: %w", err)
	}

	all := directory.All()
	if cmd.Bool("json") {
		return r.writeJSON(all, cmd.Bool("pretty"))
	}

	ready := 0
	for _, actor := range all {
		marker := " "
		if actor.Status == models.ActorReady {
			marker = "*"
			ready++
		}
		r.writePlain("%s %-24s %s\n", marker, actor.ID, actor.Label)
	}
	return r.writePlainln("%d accounts, %d ready", len(all), ready)
}
