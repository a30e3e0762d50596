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

// setupCommand initializes the config file, database, and migrations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize config file, database, and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// authCommand handles the Discogs OAuth flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Discogs authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Discogs using OAuth 1.0a",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the authenticated Discogs identity",
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
				Action: r.AuthStatus,
			},
		},
	}
}

// foldersCommand lists collection folders
func foldersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "List collection folders",
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
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Read from the local cache instead of the API",
			},
		},
		Action: r.Folders,
	}
}

// releasesCommand lists the releases in a folder
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "releases",
		Usage: "List releases in a collection folder",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "folder",
				Aliases: []string{"f"},
				Usage:   "Folder ID (0 is the full collection)",
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Usage:   "Sort order: artist_asc, artist_desc, year_asc, year_desc, date_added_desc",
			},
			&cli.BoolFlag{
				Name:  "group",
				Usage: "Group the listing by artist first letter",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Read from the local cache instead of the API",
			},
		},
		Action: r.Releases,
	}
}

// exportCommand renders a QR Factory CSV from a folder
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export releases to a QR Factory CSV file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "folder",
				Aliases: []string{"f"},
				Usage:   "Folder ID (0 is the full collection)",
			},
			&cli.StringFlag{
				Name:  "ids",
				Usage: "Comma-separated release IDs to export (default: whole folder)",
			},
			&cli.StringFlag{
				Name:    "sort",
				Aliases: []string{"s"},
				Usage:   "Sort order: artist_asc, artist_desc, year_asc, year_desc, date_added_desc",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "Path to a QR Factory template CSV (default: embedded template)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory or file path",
			},
			&cli.StringFlag{
				Name:  "edits",
				Usage: "Path to a JSON file of per-release field overrides",
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Read from the local cache instead of the API",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "Write the CSV document to stdout instead of a file",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand launches the interactive wizard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive folder browser and export wizard",
		Flags:  []cli.Flag{configFlag()},
		Action: r.TUI,
	}
}
