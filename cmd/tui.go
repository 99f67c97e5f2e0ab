package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/groupscout/groupscout/internal/actors"
	"github.com/groupscout/groupscout/internal/repositories"
	"github.com/groupscout/groupscout/internal/session"
	"github.com/groupscout/groupscout/internal/shared"
	"github.com/groupscout/groupscout/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for group discovery.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/groupscout-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	directory, err := actors.NewDirectory(r.config.Actors.File, r.logger)
	if err != nil {
		return fmt.Errorf("failed to load actor roster: %w", err)
	}
	watcher, err := actors.Watch(directory, actors.DefaultDebounce)
	if err != nil {
		r.logger.Warn("actor roster watch unavailable", "error", err)
	} else {
		defer watcher.Stop()
	}

	b, err := r.dial(r.config.Bridge.Address, r.config.Bridge.DialTimeout())
	if err != nil {
		return fmt.Errorf("failed to connect to backend: %w", err)
	}
	defer b.Close()

	opts := []session.Option{}
	if db, err := shared.OpenDatabase(r.config.Storage); err != nil {
		r.logger.Warn("storage unavailable, sessions will not be persisted", "error", err)
	} else {
		defer db.Close()
		if err := repositories.InitSchema(db); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		opts = append(opts, session.WithSnapshotStore(repositories.NewSnapshotRepository(db)))
		recent := repositories.NewRecentQueryRepository(db, r.config.Search.RecentQueryCap)
		opts = append(opts, session.WithQueryRecorder(func(query string) {
			if err := recent.Add(query); err != nil {
				r.logger.Warn("failed to record recent query", "error", err)
			}
		}))
	}

	sess := session.New(sessionConfig(r.config, 0), b, directory, r.logger, opts...)
	go sess.Start()

	if err := sess.Restore(); err != nil {
		if !errors.Is(err, shared.ErrSnapshotMissing) && !errors.Is(err, shared.ErrSnapshotStale) {
			r.logger.Warn("failed to restore previous session", "error", err)
		}
	}

	model, err := ui.NewModel(sess, r.config.UI, r.config.Search.DefaultSources)
	if err != nil {
		return fmt.Errorf("failed to build TUI model: %w", err)
	}
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
