// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, reportCommand, trackCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Create a config file from the bundled template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles SoundCloud OAuth operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "SoundCloud authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with SoundCloud using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authentication state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Force a token refresh",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthRefresh,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored credentials",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
		},
	}
}

// reportCommand computes and exports the year-in-review report.
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Compute your year-in-review report",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "year",
				Aliases: []string{"y"},
				Usage:   "Calendar year to report on (defaults to the current year)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: markdown, csv, or text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (or base path for csv)",
			},
		},
		Action: r.Report,
	}
}

// trackCommand records first-party listening activities.
func trackCommand(r *Runner) *cli.Command {
	activityFlags := func(withDuration bool) []cli.Flag {
		flags := []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User ID the activity belongs to",
			},
		}
		if withDuration {
			flags = append(flags, &cli.Int64Flag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "Play duration in milliseconds",
			})
		}
		return flags
	}

	trackArg := []cli.Argument{
		&cli.StringArg{Name: "track"},
	}

	return &cli.Command{
		Name:  "track",
		Usage: "Record listening activity in the local log",
		Commands: []*cli.Command{
			{
				Name:      "play",
				Usage:     "Record a play",
				Arguments: trackArg,
				Flags:     activityFlags(true),
				Action:    r.TrackPlay,
			},
			{
				Name:      "like",
				Usage:     "Record a like",
				Arguments: trackArg,
				Flags:     activityFlags(false),
				Action:    r.TrackLike,
			},
			{
				Name:      "repost",
				Usage:     "Record a repost",
				Arguments: trackArg,
				Flags:     activityFlags(false),
				Action:    r.TrackRepost,
			},
			{
				Name:      "share",
				Usage:     "Record a share",
				Arguments: trackArg,
				Flags:     activityFlags(false),
				Action:    r.TrackShare,
			},
			{
				Name:  "history",
				Usage: "List recorded activities for a year",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Calendar year to list (defaults to the current year)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TrackHistory,
			},
		},
	}
}

// serveCommand runs the HTTP intake and report service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the activity intake and report HTTP service",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive report browser.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse your year in review interactively",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "year",
				Aliases: []string{"y"},
				Usage:   "Calendar year to report on (defaults to the current year)",
			},
		},
		Action: r.TUI,
	}
}
