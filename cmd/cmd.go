// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// migrateCommand runs the full Spotify → YouTube Music migration
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"run"},
		Usage:   "Copy Spotify playlists to YouTube Music",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Source playlist name to migrate (repeatable; default all)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to migrate (0 for no limit)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Search for every track without creating playlists or saving",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open each created playlist in the default browser when done",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: r.Migrate,
	}
}

// spotifyCommand handles Spotify (source) operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List Spotify playlists",
				Flags: []cli.Flag{
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
						Name:  "export",
						Usage: "Also write the list to this file",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (json, csv, md, txt)",
						Value: "json",
					},
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List the tracks of one Spotify playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.SpotifyTracks,
			},
			{
				Name:  "export",
				Usage: "Snapshot playlists and their tracks to files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_<epoch>)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (json, csv, md, txt)",
						Value: "json",
					},
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist name to export (repeatable; default all)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to export (0 for no limit)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers",
						Value: 2,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist page loads per second",
						Value: 1,
					},
				},
				Action: r.SpotifyExport,
			},
		},
	}
}

// ytmusicCommand handles YouTube Music (destination) operations
func ytmusicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "ytmusic",
		Aliases: []string{"ytm", "yt"},
		Usage:   "YouTube Music operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist on YouTube Music",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.YTMusicCreate,
			},
			{
				Name:  "add",
				Usage: "Search for a track and save it to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist-id",
					},
					&cli.StringArg{
						Name: "name",
					},
					&cli.StringArg{
						Name: "artists",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist-name",
						Usage: "Playlist title to pick in the save dialog",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.YTMusicAdd,
			},
		},
	}
}

// setupCommand handles configuration and session import.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the built-in defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the config file",
						Value: "config.toml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "cookies",
				Usage: "Convert a cURL command copied from DevTools into a cookie file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "curl-file",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "service",
						Usage: "Service the cookies belong to (spotify or ytmusic)",
						Value: "ytmusic",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (default: <service>_cookies.json)",
					},
				},
				Action: r.SetupCookies,
			},
		},
	}
}

// probeCommand replays locator strategies against a saved page.
func probeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Report which locator strategy matches a saved diagnostic page",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "page",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "target",
				Usage: "What to locate (playlists, tracks, save, dialog; default all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Probe,
	}
}

// tuiCommand returns the top-level TUI command for interactive migration.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the TUI owns the terminal (default from config)",
			},
		},
		Action: r.TUI,
	}
}
