package services

import (
	"context"

	"github.com/desertthunder/spotx/internal/models"
)

// Service defines the read side of a music provider used by the exporters.
type Service interface {
	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// SearchTrack searches for a track by title and artist.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

var _ Service = (*SpotifyService)(nil)
