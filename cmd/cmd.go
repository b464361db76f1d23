// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and migrate the token database",
		Action: r.Setup,
	}
}

// authCommand manages the OAuth token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize spotx and manage the stored token",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the authorization URL",
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Authorize in the browser through a local callback server",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: loginTimeout,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening it",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "exchange",
				Usage: "Exchange a redirect URL or bare authorization code for a token",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "callback",
					},
				},
				Action: r.AuthExchange,
			},
			{
				Name:   "client-credentials",
				Usage:  "Request an app-only token (no user context)",
				Action: r.AuthClientCredentials,
			},
			{
				Name:   "refresh",
				Usage:  "Force a token refresh",
				Action: r.AuthRefresh,
			},
			{
				Name:  "status",
				Usage: "Show the stored token and its expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// apiCommand sends raw requests through the dispatcher
func apiCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "Query parameter as key=value (repeatable)",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "JSON object sent as the request body",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		}
	}
	args := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "path"}}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Web API, prints raw JSON",
		Commands: []*cli.Command{
			{Name: "get", Usage: "GET a path or URL", Arguments: args(), Flags: flags(), Action: r.APIGet},
			{Name: "post", Usage: "POST to a path or URL", Arguments: args(), Flags: flags(), Action: r.APIPost},
			{Name: "put", Usage: "PUT to a path or URL", Arguments: args(), Flags: flags(), Action: r.APIPut},
			{Name: "delete", Usage: "DELETE a path or URL", Arguments: args(), Flags: flags(), Action: r.APIDelete},
		},
	}
}

// spotifyCommand handles typed Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	jsonFlag := func() cli.Flag {
		return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
	}
	idArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}

	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library and catalog operations",
		Commands: []*cli.Command{
			{
				Name:   "me",
				Usage:  "Show the current user's profile",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SpotifyMe,
			},
			{
				Name:      "artist",
				Usage:     "Show an artist",
				Arguments: idArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.SpotifyArtist,
			},
			{
				Name:      "track",
				Usage:     "Show a track",
				Arguments: idArg(),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.SpotifyTrack,
			},
			{
				Name:  "search",
				Usage: "Search the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Comma separated item types: track, artist, album, playlist",
						Value: "track",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results per type",
						Value: 10,
					},
					jsonFlag(),
				},
				Action: r.SpotifySearch,
			},
			{
				Name:  "playlists",
				Usage: "List the current user's playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to print (0 for all)",
					},
					jsonFlag(),
				},
				Action: r.SpotifyPlaylists,
			},
			{
				Name:      "export",
				Usage:     "Export one playlist with all its tracks",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, text",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Print JSON to stdout instead of writing files",
					},
				},
				Action: r.SpotifyExport,
			},
			{
				Name:      "export-all",
				Usage:     "Export several playlists concurrently (all of yours when no IDs are given)",
				ArgsUsage: "[playlist-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, text",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: tasks.DefaultNumWorkers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: tasks.DefaultRateLimit,
					},
				},
				Action: r.SpotifyExportAll,
			},
		},
	}
}
