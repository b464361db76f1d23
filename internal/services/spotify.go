// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

const maxSeveralTracks = 50

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
	IsLocal     bool            `json:"is_local"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Images     []SpotifyImage `json:"images"`
	Followers  followers      `json:"followers"`
	Popularity int            `json:"popularity"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AlbumType   string          `json:"album_type"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylistTracks is the paging object embedded in a full playlist and returned by its tracks endpoint.
type SpotifyPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Owner       Owner                 `json:"owner"`
	Public      bool                  `json:"public"`
	SnapshotID  string                `json:"snapshot_id"`
	Tracks      SpotifyPlaylistTracks `json:"tracks"`
	Images      []SpotifyImage        `json:"images"`
	URI         string                `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	Images      []SpotifyImage      `json:"images"`
	URI         string              `json:"uri"`
}

// SpotifySearchResult holds one paging object per requested search type. Unrequested types stay nil.
type SpotifySearchResult struct {
	Tracks *struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
	Artists *struct {
		Items []SpotifyArtist `json:"items"`
		Total int             `json:"total"`
	} `json:"artists"`
	Albums *struct {
		Items []SpotifyAlbum `json:"items"`
		Total int            `json:"total"`
	} `json:"albums"`
	Playlists *struct {
		Items []*SpotifySimplePlaylist `json:"items"`
		Total int                      `json:"total"`
	} `json:"playlists"`
}

// SpotifyService is the typed layer over [Client]. It decodes responses into the Spotify* types
// and maps playlists onto [models.Playlist] and [models.Track].
type SpotifyService struct {
	client *Client
	logger *log.Logger
}

// NewSpotifyService creates a new Spotify service that sends every call through client.
func NewSpotifyService(client *Client, logger *log.Logger) *SpotifyService {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &SpotifyService{client: client, logger: shared.WithLogger(logger, "service", "spotify")}
}

// Name implements [Service].
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Client returns the untyped endpoint client backing s.
func (s *SpotifyService) Client() *Client {
	return s.client
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.client.DispatchInto(ctx, Me(), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	var track SpotifyTrack
	if err := s.client.DispatchInto(ctx, Track(trackID, ""), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
func (s *SpotifyService) SeveralTracks(ctx context.Context, trackIDs []string) ([]SpotifyTrack, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > maxSeveralTracks {
		return nil, fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, maxSeveralTracks)
	}

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := s.client.DispatchInto(ctx, Tracks(trackIDs, ""), &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	var artist SpotifyArtist
	if err := s.client.DispatchInto(ctx, Artist(artistID), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// Album retrieves an album by ID.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*SpotifyAlbum, error) {
	if albumID == "" {
		return nil, fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	var album SpotifyAlbum
	if err := s.client.DispatchInto(ctx, Album(albumID, ""), &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// SavedTracks retrieves the user's saved tracks with pagination.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	var response SpotifyPaginatedTracks
	if err := s.client.DispatchInto(ctx, MeTracks(clampLimit(limit), offset, ""), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	var response SpotifyPaginatedPlaylists
	if err := s.client.DispatchInto(ctx, MePlaylists(clampLimit(limit), offset), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Playlist retrieves a playlist by ID, including the first page of its tracks.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var playlist SpotifyPlaylist
	if err := s.client.DispatchInto(ctx, Playlist(playlistID, "", ""), &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Search runs a catalog search. types is a comma separated list such as "track,artist".
func (s *SpotifyService) Search(ctx context.Context, query, types string, limit int) (*SpotifySearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if types == "" {
		types = "track"
	}

	var result SpotifySearchResult
	if err := s.client.DispatchInto(ctx, Search(query, types, clampLimit(limit), 0, ""), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Service interface implementation

// GetPlaylists retrieves all playlists for the authenticated user, following next links until exhausted.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist

	req := MePlaylists(defaultLimit, 0)
	for {
		var response SpotifyPaginatedPlaylists
		if err := s.client.DispatchInto(ctx, req, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			all = append(all, simplePlaylistModel(sp))
		}

		if response.Next == nil || *response.Next == "" {
			break
		}
		req = nextPage(*response.Next)
	}

	s.logger.Debug("listed playlists", "count", len(all))
	return all, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := playlistModel(sp)
	return &playlist, nil
}

// ExportPlaylist exports a playlist with all its tracks, following the tracks paging links.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := playlistTrackModels(sp.Tracks.Items)
	next := sp.Tracks.Next
	for next != nil && *next != "" {
		var tracksPage SpotifyPlaylistTracks
		if err := s.client.DispatchInto(ctx, nextPage(*next), &tracksPage); err != nil {
			return nil, fmt.Errorf("failed to fetch tracks for playlist %s: %w", playlistID, err)
		}
		tracks = append(tracks, playlistTrackModels(tracksPage.Items)...)
		next = tracksPage.Next
	}

	s.logger.Debug("exported playlist", "id", playlistID, "tracks", len(tracks))
	return &models.PlaylistExport{Playlist: playlistModel(sp), Tracks: tracks}, nil
}

// SearchTrack searches for a track by title and artist and returns the best match.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: track title", shared.ErrMissingArgument)
	}

	query := "track:" + title
	if artist != "" {
		query += " artist:" + artist
	}

	result, err := s.Search(ctx, query, "track", 1)
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil || len(result.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no track matching %q", shared.ErrNotFound, query)
	}

	track := trackModel(result.Tracks.Items[0], "")
	return &track, nil
}

func nextPage(next string) Request {
	return Request{Method: http.MethodGet, URL: next}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultLimit {
		return defaultLimit
	}
	return limit
}

func simplePlaylistModel(sp SpotifySimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       ownerName(sp.Owner),
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		URI:         sp.URI,
		ImageURL:    firstImage(sp.Images),
	}
}

func playlistModel(sp *SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       ownerName(sp.Owner),
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		URI:         sp.URI,
		ImageURL:    firstImage(sp.Images),
	}
}

func firstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func ownerName(o Owner) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.ID
}

func playlistTrackModels(items []SpotifyPlaylistTrack) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, trackModel(*item.Track, item.AddedAt))
	}
	return tracks
}

func trackModel(st SpotifyTrack, addedAt string) models.Track {
	track := models.Track{
		ID:       st.ID,
		Title:    st.Name,
		Album:    st.Album.Name,
		Duration: st.DurationMS / 1000,
		ISRC:     st.ExternalIDs.ISRC,
		URI:      st.URI,
	}

	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
		track.AddedAt = t
	}
	return track
}
