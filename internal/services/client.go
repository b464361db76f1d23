package services

import (
	"context"
)

// Client exposes every endpoint builder as a method that dispatches the built [Request].
// Results are the decoded JSON bodies, nil for empty responses.
type Client struct {
	*Dispatcher
}

// NewClient wraps d.
func NewClient(d *Dispatcher) *Client {
	return &Client{Dispatcher: d}
}

// Do sends an arbitrary request, for endpoints without a builder or for absolute next-page links.
func (c *Client) Do(ctx context.Context, method, url string, params, payload map[string]any) (any, error) {
	return c.Dispatch(ctx, Request{Method: method, URL: url, Params: params, Payload: payload})
}

// Album dispatches [Album].
func (c *Client) Album(ctx context.Context, id, market string) (any, error) {
	return c.Dispatch(ctx, Album(id, market))
}

// Albums dispatches [Albums].
func (c *Client) Albums(ctx context.Context, ids []string, market string) (any, error) {
	return c.Dispatch(ctx, Albums(ids, market))
}

// AlbumTracks dispatches [AlbumTracks].
func (c *Client) AlbumTracks(ctx context.Context, id string, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, AlbumTracks(id, limit, offset, market))
}

// Artist dispatches [Artist].
func (c *Client) Artist(ctx context.Context, id string) (any, error) {
	return c.Dispatch(ctx, Artist(id))
}

// Artists dispatches [Artists].
func (c *Client) Artists(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, Artists(ids))
}

// ArtistAlbums dispatches [ArtistAlbums].
func (c *Client) ArtistAlbums(ctx context.Context, id, albumType, market string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, ArtistAlbums(id, albumType, market, limit, offset))
}

// ArtistTopTracks dispatches [ArtistTopTracks].
func (c *Client) ArtistTopTracks(ctx context.Context, id, country string) (any, error) {
	return c.Dispatch(ctx, ArtistTopTracks(id, country))
}

// ArtistRelatedArtists dispatches [ArtistRelatedArtists].
func (c *Client) ArtistRelatedArtists(ctx context.Context, id string) (any, error) {
	return c.Dispatch(ctx, ArtistRelatedArtists(id))
}

// Track dispatches [Track].
func (c *Client) Track(ctx context.Context, id, market string) (any, error) {
	return c.Dispatch(ctx, Track(id, market))
}

// Tracks dispatches [Tracks].
func (c *Client) Tracks(ctx context.Context, ids []string, market string) (any, error) {
	return c.Dispatch(ctx, Tracks(ids, market))
}

// TrackAudioFeatures dispatches [TrackAudioFeatures].
func (c *Client) TrackAudioFeatures(ctx context.Context, id string) (any, error) {
	return c.Dispatch(ctx, TrackAudioFeatures(id))
}

// TracksAudioFeatures dispatches [TracksAudioFeatures].
func (c *Client) TracksAudioFeatures(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, TracksAudioFeatures(ids))
}

// BrowseFeaturedPlaylists dispatches [BrowseFeaturedPlaylists].
func (c *Client) BrowseFeaturedPlaylists(ctx context.Context, locale, country, timestamp string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, BrowseFeaturedPlaylists(locale, country, timestamp, limit, offset))
}

// BrowseNewReleases dispatches [BrowseNewReleases].
func (c *Client) BrowseNewReleases(ctx context.Context, country string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, BrowseNewReleases(country, limit, offset))
}

// BrowseCategories dispatches [BrowseCategories].
func (c *Client) BrowseCategories(ctx context.Context, locale, country string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, BrowseCategories(locale, country, limit, offset))
}

// BrowseCategory dispatches [BrowseCategory].
func (c *Client) BrowseCategory(ctx context.Context, id, locale, country string) (any, error) {
	return c.Dispatch(ctx, BrowseCategory(id, locale, country))
}

// BrowseCategoryPlaylists dispatches [BrowseCategoryPlaylists].
func (c *Client) BrowseCategoryPlaylists(ctx context.Context, id, country string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, BrowseCategoryPlaylists(id, country, limit, offset))
}

// Recommendations dispatches [Recommendations].
func (c *Client) Recommendations(ctx context.Context, o RecommendationsOpts) (any, error) {
	return c.Dispatch(ctx, Recommendations(o))
}

// Me dispatches [Me].
func (c *Client) Me(ctx context.Context) (any, error) {
	return c.Dispatch(ctx, Me())
}

// MeFollowing dispatches [MeFollowing].
func (c *Client) MeFollowing(ctx context.Context, typ string, limit int, after string) (any, error) {
	return c.Dispatch(ctx, MeFollowing(typ, limit, after))
}

// MeFollow dispatches [MeFollow].
func (c *Client) MeFollow(ctx context.Context, typ string, ids []string) (any, error) {
	return c.Dispatch(ctx, MeFollow(typ, ids))
}

// MeUnfollow dispatches [MeUnfollow].
func (c *Client) MeUnfollow(ctx context.Context, typ string, ids []string) (any, error) {
	return c.Dispatch(ctx, MeUnfollow(typ, ids))
}

// MeFollowingContains dispatches [MeFollowingContains].
func (c *Client) MeFollowingContains(ctx context.Context, typ string, ids []string) (any, error) {
	return c.Dispatch(ctx, MeFollowingContains(typ, ids))
}

// MeFollowPlaylist dispatches [MeFollowPlaylist].
func (c *Client) MeFollowPlaylist(ctx context.Context, ownerID, playlistID string, public bool) (any, error) {
	return c.Dispatch(ctx, MeFollowPlaylist(ownerID, playlistID, public))
}

// MeUnfollowPlaylist dispatches [MeUnfollowPlaylist].
func (c *Client) MeUnfollowPlaylist(ctx context.Context, ownerID, playlistID string) (any, error) {
	return c.Dispatch(ctx, MeUnfollowPlaylist(ownerID, playlistID))
}

// UsersFollowingContainsPlaylist dispatches [UsersFollowingContainsPlaylist].
func (c *Client) UsersFollowingContainsPlaylist(ctx context.Context, ownerID, playlistID string, userIDs []string) (any, error) {
	return c.Dispatch(ctx, UsersFollowingContainsPlaylist(ownerID, playlistID, userIDs))
}

// MeTracks dispatches [MeTracks].
func (c *Client) MeTracks(ctx context.Context, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, MeTracks(limit, offset, market))
}

// MeTracksAdd dispatches [MeTracksAdd].
func (c *Client) MeTracksAdd(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeTracksAdd(ids))
}

// MeTracksRemove dispatches [MeTracksRemove].
func (c *Client) MeTracksRemove(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeTracksRemove(ids))
}

// MeTracksContains dispatches [MeTracksContains].
func (c *Client) MeTracksContains(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeTracksContains(ids))
}

// MeAlbums dispatches [MeAlbums].
func (c *Client) MeAlbums(ctx context.Context, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, MeAlbums(limit, offset, market))
}

// MeAlbumsAdd dispatches [MeAlbumsAdd].
func (c *Client) MeAlbumsAdd(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeAlbumsAdd(ids))
}

// MeAlbumsRemove dispatches [MeAlbumsRemove].
func (c *Client) MeAlbumsRemove(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeAlbumsRemove(ids))
}

// MeAlbumsContains dispatches [MeAlbumsContains].
func (c *Client) MeAlbumsContains(ctx context.Context, ids []string) (any, error) {
	return c.Dispatch(ctx, MeAlbumsContains(ids))
}

// MeTop dispatches [MeTop].
func (c *Client) MeTop(ctx context.Context, typ string, limit, offset int, timeRange string) (any, error) {
	return c.Dispatch(ctx, MeTop(typ, limit, offset, timeRange))
}

// MePlayerRecentlyPlayed dispatches [MePlayerRecentlyPlayed].
func (c *Client) MePlayerRecentlyPlayed(ctx context.Context, limit int, before, after string) (any, error) {
	return c.Dispatch(ctx, MePlayerRecentlyPlayed(limit, before, after))
}

// MePlaylists dispatches [MePlaylists].
func (c *Client) MePlaylists(ctx context.Context, limit, offset int) (any, error) {
	return c.Dispatch(ctx, MePlaylists(limit, offset))
}

// UserPlaylists dispatches [UserPlaylists].
func (c *Client) UserPlaylists(ctx context.Context, userID string, limit, offset int) (any, error) {
	return c.Dispatch(ctx, UserPlaylists(userID, limit, offset))
}

// UserPlaylist dispatches [UserPlaylist].
func (c *Client) UserPlaylist(ctx context.Context, userID, playlistID, fields, market string) (any, error) {
	return c.Dispatch(ctx, UserPlaylist(userID, playlistID, fields, market))
}

// UserPlaylistTracks dispatches [UserPlaylistTracks].
func (c *Client) UserPlaylistTracks(ctx context.Context, userID, playlistID, fields string, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, UserPlaylistTracks(userID, playlistID, fields, limit, offset, market))
}

// Playlist dispatches [Playlist].
func (c *Client) Playlist(ctx context.Context, playlistID, fields, market string) (any, error) {
	return c.Dispatch(ctx, Playlist(playlistID, fields, market))
}

// PlaylistTracks dispatches [PlaylistTracks].
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, fields string, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, PlaylistTracks(playlistID, fields, limit, offset, market))
}

// UserPlaylistCreate dispatches [UserPlaylistCreate].
func (c *Client) UserPlaylistCreate(ctx context.Context, userID, name string, public, collaborative bool, description string) (any, error) {
	return c.Dispatch(ctx, UserPlaylistCreate(userID, name, public, collaborative, description))
}

// UserPlaylistTracksAdd dispatches [UserPlaylistTracksAdd].
func (c *Client) UserPlaylistTracksAdd(ctx context.Context, userID, playlistID string, uris []string, position *int) (any, error) {
	return c.Dispatch(ctx, UserPlaylistTracksAdd(userID, playlistID, uris, position))
}

// UserPlaylistTracksRemoveAll dispatches [UserPlaylistTracksRemoveAll].
func (c *Client) UserPlaylistTracksRemoveAll(ctx context.Context, userID, playlistID string, uris []string, snapshotID string) (any, error) {
	return c.Dispatch(ctx, UserPlaylistTracksRemoveAll(userID, playlistID, uris, snapshotID))
}

// UserPlaylistTracksRemoveSpecific dispatches [UserPlaylistTracksRemoveSpecific].
func (c *Client) UserPlaylistTracksRemoveSpecific(ctx context.Context, userID, playlistID string, tracks []TrackPositions, snapshotID string) (any, error) {
	return c.Dispatch(ctx, UserPlaylistTracksRemoveSpecific(userID, playlistID, tracks, snapshotID))
}

// PlaylistCoverUpload dispatches [PlaylistCoverUpload].
func (c *Client) PlaylistCoverUpload(ctx context.Context, playlistID, image string) (any, error) {
	return c.Dispatch(ctx, PlaylistCoverUpload(playlistID, image))
}

// Search dispatches [Search].
func (c *Client) Search(ctx context.Context, q, typ string, limit, offset int, market string) (any, error) {
	return c.Dispatch(ctx, Search(q, typ, limit, offset, market))
}

// MePlayerDevices dispatches [MePlayerDevices].
func (c *Client) MePlayerDevices(ctx context.Context) (any, error) {
	return c.Dispatch(ctx, MePlayerDevices())
}

// MePlayerCurrentlyPlaying dispatches [MePlayerCurrentlyPlaying].
func (c *Client) MePlayerCurrentlyPlaying(ctx context.Context, market string) (any, error) {
	return c.Dispatch(ctx, MePlayerCurrentlyPlaying(market))
}

// MePlayerPlay dispatches [MePlayerPlay].
func (c *Client) MePlayerPlay(ctx context.Context, deviceID, contextURI string, uris []string, offset map[string]any) (any, error) {
	return c.Dispatch(ctx, MePlayerPlay(deviceID, contextURI, uris, offset))
}

// MePlayerPause dispatches [MePlayerPause].
func (c *Client) MePlayerPause(ctx context.Context, deviceID string) (any, error) {
	return c.Dispatch(ctx, MePlayerPause(deviceID))
}

// MePlayerNext dispatches [MePlayerNext].
func (c *Client) MePlayerNext(ctx context.Context, deviceID string) (any, error) {
	return c.Dispatch(ctx, MePlayerNext(deviceID))
}

// MePlayerPrevious dispatches [MePlayerPrevious].
func (c *Client) MePlayerPrevious(ctx context.Context, deviceID string) (any, error) {
	return c.Dispatch(ctx, MePlayerPrevious(deviceID))
}

// MePlayerVolume dispatches [MePlayerVolume].
func (c *Client) MePlayerVolume(ctx context.Context, volumePercent int, deviceID string) (any, error) {
	return c.Dispatch(ctx, MePlayerVolume(volumePercent, deviceID))
}
