package main

import (
	"context"
	"fmt"

	"github.com/groupscout/groupscout/internal/actors"
	"github.com/groupscout/groupscout/internal/formatter"
	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/session"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// sessionConfig maps the file config onto session tunables.
func sessionConfig(config *shared.Config, limit int) session.Config {
	if limit <= 0 {
		limit = config.Search.ResultLimit
	}
	return session.Config{
		IdleTimeout:  config.Search.IdleTimeout(),
		WatchdogTick: config.Search.WatchdogTick(),
		ResultLimit:  limit,
		SnapshotTTL:  config.Search.SnapshotTTL(),
		JoinRate:     rate.Limit(config.Bridge.JoinRatePerMinute / 60),
		JoinBurst:    config.Bridge.JoinBurst,
	}
}

// Search runs one discovery search to completion and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: usage: groupscout search <query>", shared.ErrEmptyQuery)
	}

	sources := cmd.StringSlice("source")
	if len(sources) == 0 {
		sources = r.config.Search.DefaultSources
	}

	directory, err := actors.NewDirectory(r.config.Actors.File, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load actor roster: %w", err)
	}

	b, err := r.dial(r.config.Bridge.Address, r.config.Bridge.DialTimeout())
	if err != nil {
		return fmt.Errorf("failed to connect to backend: %w", err)
	}
	defer b.Close()

	opts := []session.Option{}
	if db, err := shared.OpenDatabase(r.config.Storage); err != nil {
		r.logger.Warn("storage unavailable, results will not be persisted", "error", err)
	} else {
		defer db.Close()
		if err := repositories.InitSchema(db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		opts = append(opts, session.WithSnapshotStore(repositories.NewSnapshotRepository(db)))
		recent := repositories.NewRecentQueryRepository(db, r.config.Search.RecentQueryCap)
		opts = append(opts, session.WithQueryRecorder(func(q string) {
			if err := recent.Add(q); err != nil {
				r.logger.Warn("failed to record recent query", "error", err)
			}
		}))
	}

	sess := session.New(sessionConfig(r.config, int(cmd.Int("limit"))), b, directory, r.logger, opts...)
	go sess.Start()

	if err := sess.Submit(query, sources); err != nil {
		return err
	}

	for update := range sess.Updates() {
		if update.Kind == session.UpdateError {
			return fmt.Errorf("%w: %s", shared.ErrSearchFailed, update.Message)
		}
		if update.Kind == session.UpdatePhase && update.Phase.Terminal() {
			break
		}
	}

	items := sess.Items()
	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	newCount, knownCount := sess.Counts()
	if _, err := r.output.Write(formatter.ExportToTable(items)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlainln("%d results (%d new, %d known)", len(items), newCount, knownCount)
}
