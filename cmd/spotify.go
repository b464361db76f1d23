package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SpotifyMe prints the current user's profile.
func (r *Runner) SpotifyMe(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	user, err := r.spotify.UserProfile(ctx)
	if err != nil {
		return r.apiError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader(user.DisplayName)
	r.writePlain("%s\n", r.palette.KeyValue("ID", user.ID))
	if user.Email != "" {
		r.writePlain("%s\n", r.palette.KeyValue("Email", user.Email))
	}
	if user.Country != "" {
		r.writePlain("%s\n", r.palette.KeyValue("Country", user.Country))
	}
	r.writePlain("%s\n", r.palette.KeyValue("Product", user.Product))
	r.writePlain("%s\n", r.palette.KeyValue("Followers", user.Followers.Total))
	return nil
}

// SpotifyArtist prints one artist.
func (r *Runner) SpotifyArtist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	artist, err := r.spotify.Artist(ctx, id)
	if err != nil {
		return r.apiError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artist, true)
	}

	r.writePlainHeader(artist.Name)
	r.writePlain("%s\n", r.palette.KeyValue("ID", artist.ID))
	if len(artist.Genres) > 0 {
		r.writePlain("%s\n", r.palette.KeyValue("Genres", strings.Join(artist.Genres, ", ")))
	}
	r.writePlain("%s\n", r.palette.KeyValue("Followers", artist.Followers.Total))
	r.writePlain("%s\n", r.palette.KeyValue("Popularity", artist.Popularity))
	return nil
}

// SpotifyTrack prints one track.
func (r *Runner) SpotifyTrack(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	track, err := r.spotify.Track(ctx, id)
	if err != nil {
		return r.apiError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}

	r.writePlainHeader(track.Name)
	r.writePlain("%s\n", r.palette.KeyValue("ID", track.ID))
	r.writePlain("%s\n", r.palette.KeyValue("Artists", artistNames(track.Artists)))
	if track.Album.Name != "" {
		r.writePlain("%s\n", r.palette.KeyValue("Album", track.Album.Name))
	}
	r.writePlain("%s\n", r.palette.KeyValue("Duration", shared.FormatDuration(track.DurationMS/1000)))
	if track.ExternalIDs.ISRC != "" {
		r.writePlain("%s\n", r.palette.KeyValue("ISRC", track.ExternalIDs.ISRC))
	}
	return nil
}

// SpotifySearch searches the catalog and prints one section per requested type.
func (r *Runner) SpotifySearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	result, err := r.spotify.Search(ctx, query, cmd.String("type"), cmd.Int("limit"))
	if err != nil {
		return r.apiError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if result.Tracks != nil {
		r.writePlainHeader(fmt.Sprintf("Tracks (%d)", result.Tracks.Total))
		for i, t := range result.Tracks.Items {
			r.writePlain("%d. %s - %s [%s]\n", i+1, artistNames(t.Artists), t.Name, t.ID)
		}
	}
	if result.Artists != nil {
		r.writePlainHeader(fmt.Sprintf("Artists (%d)", result.Artists.Total))
		for i, a := range result.Artists.Items {
			r.writePlain("%d. %s [%s]\n", i+1, a.Name, a.ID)
		}
	}
	if result.Albums != nil {
		r.writePlainHeader(fmt.Sprintf("Albums (%d)", result.Albums.Total))
		for i, a := range result.Albums.Items {
			r.writePlain("%d. %s - %s [%s]\n", i+1, artistNames(a.Artists), a.Name, a.ID)
		}
	}
	if result.Playlists != nil {
		r.writePlainHeader(fmt.Sprintf("Playlists (%d)", result.Playlists.Total))
		n := 0
		for _, p := range result.Playlists.Items {
			if p == nil {
				continue
			}
			n++
			r.writePlain("%d. %s [%s]\n", n, p.Name, p.ID)
		}
	}
	return nil
}

// SpotifyPlaylists lists every playlist of the current user, following pagination.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		return r.apiError(err)
	}

	if limit := cmd.Int("limit"); limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for i, pl := range playlists {
		r.writePlain("%d. %s (%d tracks) [%s]\n", i+1, pl.Name, pl.TrackCount, pl.ID)
	}
	return nil
}

// SpotifyExport exports one playlist in the requested format.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	export, err := r.spotify.ExportPlaylist(ctx, id)
	if err != nil {
		return r.apiError(err)
	}

	if cmd.Bool("stdout") {
		return r.writeJSON(export, true)
	}

	w := &formatter.Writer{HTTPClient: r.httpClient, Logger: r.logger}
	result, err := w.Write(ctx, export, format, cmd.String("dir"))
	if err != nil {
		return err
	}

	r.logger.Infof("playlist exported with %v tracks", len(export.Tracks))
	r.writePlain("%s\n", r.palette.Success(fmt.Sprintf("Exported %s (%d tracks)", export.Playlist.Name, len(export.Tracks))))
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// SpotifyExportAll exports the given playlists, or all of the user's playlists, with [tasks.BulkExport].
func (r *Runner) SpotifyExportAll(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		playlists, err := r.spotify.GetPlaylists(ctx)
		if err != nil {
			return r.apiError(err)
		}
		for _, pl := range playlists {
			ids = append(ids, pl.ID)
		}
	}
	if len(ids) == 0 {
		return r.writePlain("%s\n", r.palette.Warning("No playlists to export"))
	}

	progress := make(chan tasks.ProgressUpdate, len(ids)*3)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.ExportCompleted:
				r.writePlain("%s\n", r.palette.Success(update.Message))
			case tasks.ExportFailed:
				r.writePlain("%s\n", r.palette.Failure(update.Message))
			}
		}
	}()

	result, err := tasks.BulkExport(ctx, r.spotify, ids, tasks.Options{
		Format:     format,
		Dir:        cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Writer:     &formatter.Writer{HTTPClient: r.httpClient, Logger: r.logger},
		Logger:     r.logger,
		Progress:   progress,
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainln("Exported %d of %d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
		if result.ManifestPath != "" {
			r.writePlain("%s\n", r.palette.KeyValue("Manifest", result.ManifestPath))
		}
	}
	return err
}

// apiError adds a hint to authorization failures.
func (r *Runner) apiError(err error) error {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return fmt.Errorf("%w: run spotx auth login first", err)
	case errors.Is(err, shared.ErrTokenExpired):
		return fmt.Errorf("%w: run spotx auth refresh or spotx auth login", err)
	}
	return err
}

func artistNames(artists []services.SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
