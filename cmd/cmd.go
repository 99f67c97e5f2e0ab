// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// searchCommand runs one discovery search to completion and prints results.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for groups and print the results",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Discovery source to search (repeatable, defaults from config)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results to request",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// actorsCommand inspects the account roster.
func actorsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "actors",
		Usage: "Account roster operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured accounts and their readiness",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ActorsList,
			},
		},
	}
}

// recentCommand prints the recent-queries list.
func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show recent search queries, most recent first",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Recent,
	}
}

// exportCommand writes the stored snapshot as a delimited file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the last completed search to a delimited file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format (csv or txt)",
				Value: "txt",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only export one kind (group or channel)",
			},
			&cli.IntFlag{
				Name:  "min-members",
				Usage: "Only export items with at least this many members",
			},
			&cli.BoolFlag{
				Name:  "joined",
				Usage: "Only export items the client is a member of",
			},
		},
		Action: r.Export,
	}
}

// snapshotCommand inspects and clears the persisted session snapshot.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Persisted session snapshot operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored snapshot summary",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SnapshotShow,
			},
			{
				Name:  "clear",
				Usage: "Delete the stored snapshot",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SnapshotClear,
			},
		},
	}
}

// setupCommand handles first-run initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file, database and actor roster",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}

// demoCommand runs the loopback demo backend.
func demoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Run a loopback demo backend speaking the bridge protocol",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to the configured bridge address)",
			},
		},
		Action: r.Demo,
	}
}

// tuiCommand returns the top-level TUI command for interactive discovery.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for group discovery",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.TUI,
	}
}
