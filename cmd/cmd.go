// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const defaultConfigPath = "config.toml"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
		Sources: cli.EnvVars("NOTEHUB_CONFIG"),
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars("NOTEHUB_PASSWORD"),
		},
	}
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "per-page",
			Usage: "Notes per page (defaults to search.per_page)",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"s"},
			Usage:   "Search term",
		},
		&cli.StringFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Tag filter (Todo, Work, Personal, Meeting, Shopping or All)",
		},
	}
}

// serveCommand runs the guarded JSON front-end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the notes front-end with route protection",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the front-end in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in; session cookies are stored locally",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "register",
				Usage:  "Create an account and sign in",
				Flags:  credentialFlags(),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget stored cookies",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check the current session",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Refresh the session using the stored refresh token",
				Action: r.AuthRefresh,
			},
		},
	}
}

// notesCommand handles note operations
func notesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "List, edit and export notes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List one page of notes",
				Flags:  append(listFlags(), outputFlags()...),
				Action: r.NotesList,
			},
			{
				Name:  "get",
				Usage: "Show a note",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.NotesGet,
			},
			{
				Name:  "create",
				Usage: "Create a note",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Note title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "Note content",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Note tag",
						Value: "Todo",
					},
				}, outputFlags()...),
				Action: r.NotesCreate,
			},
			{
				Name:  "update",
				Usage: "Change a note's title, content or tag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "New title",
					},
					&cli.StringFlag{
						Name:  "content",
						Usage: "New content",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "New tag",
					},
				}, outputFlags()...),
				Action: r.NotesUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a note",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.NotesDelete,
			},
			{
				Name:  "export",
				Usage: "Export every matching note to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: notes_export_{timestamp})",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Only export notes matching the search term",
					},
					&cli.StringFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Only export notes with this tag",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Page requests per second",
						Value: 5,
					},
				},
				Action: r.NotesExport,
			},
			{
				Name:  "exports",
				Usage: "Show recent exports",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of exports to show",
						Value: 10,
					},
				}, outputFlags()...),
				Action: r.NotesExports,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show the profile",
				Flags:  outputFlags(),
				Action: r.ProfileGet,
			},
			{
				Name:  "update",
				Usage: "Change the username",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "New username",
						Required: true,
					},
				}, outputFlags()...),
				Action: r.ProfileUpdate,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// browseCommand returns the top-level TUI command for browsing notes.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse notes in an interactive TUI",
		Action:  r.Browse,
	}
}
