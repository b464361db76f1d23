package services

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint builders map typed arguments to a [Request]. They perform no I/O.
//
// List identifiers are comma joined, empty optional arguments are left out of the request and
// a limit <= 0 selects the endpoint's default page size.

const (
	defaultLimit                = 50
	defaultPlaylistTracksLimit  = 100
	defaultRecommendationsLimit = 100
)

// Album fetches a single album.
func Album(id, market string) Request {
	return get(path("/albums/%s", id), map[string]any{"market": opt(market)})
}

// Albums fetches several albums in one request (at most 20 ids).
func Albums(ids []string, market string) Request {
	return get("/albums", map[string]any{"ids": join(ids), "market": opt(market)})
}

// AlbumTracks pages through an album's tracks.
func AlbumTracks(id string, limit, offset int, market string) Request {
	return get(path("/albums/%s/tracks", id), page(limit, offset, defaultLimit, map[string]any{"market": opt(market)}))
}

// Artist fetches a single artist.
func Artist(id string) Request {
	return get(path("/artists/%s", id), nil)
}

// Artists fetches several artists (at most 50 ids).
func Artists(ids []string) Request {
	return get("/artists", map[string]any{"ids": join(ids)})
}

// ArtistAlbums pages through an artist's albums, optionally filtered by albumType.
func ArtistAlbums(id, albumType, market string, limit, offset int) Request {
	return get(path("/artists/%s/albums", id), page(limit, offset, defaultLimit, map[string]any{
		"album_type": opt(albumType),
		"market":     opt(market),
	}))
}

// ArtistTopTracks lists an artist's top tracks in country.
func ArtistTopTracks(id, country string) Request {
	return get(path("/artists/%s/top-tracks", id), map[string]any{"country": country})
}

// ArtistRelatedArtists lists artists similar to id.
func ArtistRelatedArtists(id string) Request {
	return get(path("/artists/%s/related-artists", id), nil)
}

// Track fetches a single track.
func Track(id, market string) Request {
	return get(path("/tracks/%s", id), map[string]any{"market": opt(market)})
}

// Tracks fetches several tracks (at most 50 ids).
func Tracks(ids []string, market string) Request {
	return get("/tracks", map[string]any{"ids": join(ids), "market": opt(market)})
}

// TrackAudioFeatures fetches audio features for one track.
func TrackAudioFeatures(id string) Request {
	return get(path("/audio-features/%s", id), nil)
}

// TracksAudioFeatures fetches audio features for several tracks.
func TracksAudioFeatures(ids []string) Request {
	return get("/audio-features", map[string]any{"ids": join(ids)})
}

// BrowseFeaturedPlaylists lists the featured playlists. timestamp is ISO 8601 local time.
func BrowseFeaturedPlaylists(locale, country, timestamp string, limit, offset int) Request {
	return get("/browse/featured-playlists", page(limit, offset, defaultLimit, map[string]any{
		"locale":    opt(locale),
		"country":   opt(country),
		"timestamp": opt(timestamp),
	}))
}

// BrowseNewReleases lists new album releases.
func BrowseNewReleases(country string, limit, offset int) Request {
	return get("/browse/new-releases", page(limit, offset, defaultLimit, map[string]any{"country": opt(country)}))
}

// BrowseCategories lists browse categories.
func BrowseCategories(locale, country string, limit, offset int) Request {
	return get("/browse/categories", page(limit, offset, defaultLimit, map[string]any{
		"locale":  opt(locale),
		"country": opt(country),
	}))
}

// BrowseCategory fetches a single browse category.
func BrowseCategory(id, locale, country string) Request {
	return get(path("/browse/categories/%s", id), map[string]any{"locale": opt(locale), "country": opt(country)})
}

// BrowseCategoryPlaylists lists the playlists tagged with a category.
func BrowseCategoryPlaylists(id, country string, limit, offset int) Request {
	return get(path("/browse/categories/%s/playlists", id), page(limit, offset, defaultLimit, map[string]any{
		"country": opt(country),
	}))
}

// RecommendationsOpts are the seeds and tunable attributes (target_energy, min_tempo, ...) for [Recommendations].
type RecommendationsOpts struct {
	SeedArtists []string
	SeedTracks  []string
	SeedGenres  []string
	Market      string
	Limit       int
	Tuneables   map[string]any
}

// Recommendations builds tracks from up to five seeds.
func Recommendations(o RecommendationsOpts) Request {
	params := map[string]any{"limit": orDefault(o.Limit, defaultRecommendationsLimit)}
	if len(o.SeedArtists) > 0 {
		params["seed_artists"] = join(o.SeedArtists)
	}
	if len(o.SeedTracks) > 0 {
		params["seed_tracks"] = join(o.SeedTracks)
	}
	if len(o.SeedGenres) > 0 {
		params["seed_genres"] = join(o.SeedGenres)
	}
	if o.Market != "" {
		params["market"] = o.Market
	}
	for k, v := range o.Tuneables {
		params[k] = v
	}
	return get("/recommendations", params)
}

// Me is the current user's profile.
func Me() Request {
	return get("/me", nil)
}

// MeFollowing lists followed artists. typ defaults to "artist".
func MeFollowing(typ string, limit int, after string) Request {
	if typ == "" {
		typ = "artist"
	}
	return get("/me/following", map[string]any{
		"type":  typ,
		"limit": orDefault(limit, defaultLimit),
		"after": opt(after),
	})
}

// MeFollow follows artists or users (at most 50 ids).
func MeFollow(typ string, ids []string) Request {
	return Request{Method: http.MethodPut, URL: "/me/following", Params: map[string]any{"type": typ}, Payload: map[string]any{"ids": ids}}
}

// MeUnfollow unfollows artists or users.
func MeUnfollow(typ string, ids []string) Request {
	return Request{Method: http.MethodDelete, URL: "/me/following", Params: map[string]any{"type": typ}, Payload: map[string]any{"ids": ids}}
}

// MeFollowingContains reports whether the current user follows each id.
func MeFollowingContains(typ string, ids []string) Request {
	return get("/me/following/contains", map[string]any{"type": typ, "ids": join(ids)})
}

// MeFollowPlaylist follows a playlist, publicly unless public is false.
func MeFollowPlaylist(ownerID, playlistID string, public bool) Request {
	return Request{
		Method: http.MethodPut,
		URL:    path("/users/%s/playlists/%s/followers", ownerID, playlistID),
		Params: map[string]any{"public": public},
	}
}

// MeUnfollowPlaylist unfollows a playlist.
func MeUnfollowPlaylist(ownerID, playlistID string) Request {
	return Request{Method: http.MethodDelete, URL: path("/users/%s/playlists/%s/followers", ownerID, playlistID)}
}

// UsersFollowingContainsPlaylist reports whether each user follows the playlist.
func UsersFollowingContainsPlaylist(ownerID, playlistID string, userIDs []string) Request {
	return get(path("/users/%s/playlists/%s/followers/contains", ownerID, playlistID), map[string]any{"ids": join(userIDs)})
}

// MeTracks pages through the current user's saved tracks.
func MeTracks(limit, offset int, market string) Request {
	return get("/me/tracks", page(limit, offset, defaultLimit, map[string]any{"market": opt(market)}))
}

// MeTracksAdd saves tracks to the library.
func MeTracksAdd(ids []string) Request {
	return Request{Method: http.MethodPut, URL: "/me/tracks", Params: map[string]any{"ids": join(ids)}}
}

// MeTracksRemove removes tracks from the library.
func MeTracksRemove(ids []string) Request {
	return Request{Method: http.MethodDelete, URL: "/me/tracks", Params: map[string]any{"ids": join(ids)}}
}

// MeTracksContains reports whether each track is saved.
func MeTracksContains(ids []string) Request {
	return get("/me/tracks/contains", map[string]any{"ids": join(ids)})
}

// MeAlbums pages through the current user's saved albums.
func MeAlbums(limit, offset int, market string) Request {
	return get("/me/albums", page(limit, offset, defaultLimit, map[string]any{"market": opt(market)}))
}

// MeAlbumsAdd saves albums to the library.
func MeAlbumsAdd(ids []string) Request {
	return Request{Method: http.MethodPut, URL: "/me/albums", Params: map[string]any{"ids": join(ids)}}
}

// MeAlbumsRemove removes albums from the library.
func MeAlbumsRemove(ids []string) Request {
	return Request{Method: http.MethodDelete, URL: "/me/albums", Params: map[string]any{"ids": join(ids)}}
}

// MeAlbumsContains reports whether each album is saved.
func MeAlbumsContains(ids []string) Request {
	return get("/me/albums/contains", map[string]any{"ids": join(ids)})
}

// MeTop lists top "artists" or "tracks". timeRange defaults to medium_term.
func MeTop(typ string, limit, offset int, timeRange string) Request {
	if timeRange == "" {
		timeRange = "medium_term"
	}
	return get(path("/me/top/%s", typ), page(limit, offset, defaultLimit, map[string]any{"time_range": timeRange}))
}

// MePlayerRecentlyPlayed takes before/after as unix millisecond cursors.
func MePlayerRecentlyPlayed(limit int, before, after string) Request {
	return get("/me/player/recently-played", map[string]any{
		"limit":  orDefault(limit, defaultLimit),
		"before": opt(before),
		"after":  opt(after),
	})
}

// MePlaylists pages through the current user's playlists.
func MePlaylists(limit, offset int) Request {
	return get("/me/playlists", page(limit, offset, defaultLimit, nil))
}

// UserPlaylists pages through a user's public playlists.
func UserPlaylists(userID string, limit, offset int) Request {
	return get(path("/users/%s/playlists", userID), page(limit, offset, defaultLimit, nil))
}

// UserPlaylist fetches a playlist by owner and id. fields narrows the response.
func UserPlaylist(userID, playlistID, fields, market string) Request {
	return get(path("/users/%s/playlists/%s", userID, playlistID), map[string]any{"fields": opt(fields), "market": opt(market)})
}

// UserPlaylistTracks pages through a playlist's tracks, 100 per page by default.
func UserPlaylistTracks(userID, playlistID, fields string, limit, offset int, market string) Request {
	return get(path("/users/%s/playlists/%s/tracks", userID, playlistID), page(limit, offset, defaultPlaylistTracksLimit, map[string]any{
		"fields": opt(fields),
		"market": opt(market),
	}))
}

// Playlist fetches a playlist without its owner's id.
func Playlist(playlistID, fields, market string) Request {
	return get(path("/playlists/%s", playlistID), map[string]any{"fields": opt(fields), "market": opt(market)})
}

// PlaylistTracks pages through a playlist's tracks without its owner's id.
func PlaylistTracks(playlistID, fields string, limit, offset int, market string) Request {
	return get(path("/playlists/%s/tracks", playlistID), page(limit, offset, defaultPlaylistTracksLimit, map[string]any{
		"fields": opt(fields),
		"market": opt(market),
	}))
}

// UserPlaylistCreate creates a playlist for userID.
func UserPlaylistCreate(userID, name string, public, collaborative bool, description string) Request {
	return Request{
		Method: http.MethodPost,
		URL:    path("/users/%s/playlists", userID),
		Payload: map[string]any{
			"name":          name,
			"public":        public,
			"collaborative": collaborative,
			"description":   opt(description),
		},
	}
}

// UserPlaylistTracksAdd appends uris, or inserts them at position when it is non-nil.
func UserPlaylistTracksAdd(userID, playlistID string, uris []string, position *int) Request {
	payload := map[string]any{"uris": uris}
	if position != nil {
		payload["position"] = *position
	}
	return Request{Method: http.MethodPost, URL: path("/users/%s/playlists/%s/tracks", userID, playlistID), Payload: payload}
}

// UserPlaylistTracksRemoveAll removes every occurrence of each uri.
func UserPlaylistTracksRemoveAll(userID, playlistID string, uris []string, snapshotID string) Request {
	tracks := make([]map[string]any, 0, len(uris))
	for _, uri := range uris {
		tracks = append(tracks, map[string]any{"uri": uri})
	}
	return Request{
		Method:  http.MethodDelete,
		URL:     path("/users/%s/playlists/%s/tracks", userID, playlistID),
		Payload: map[string]any{"tracks": tracks, "snapshot_id": opt(snapshotID)},
	}
}

// TrackPositions selects occurrences of a track by zero-based position.
type TrackPositions struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

// UserPlaylistTracksRemoveSpecific removes only the listed occurrences.
func UserPlaylistTracksRemoveSpecific(userID, playlistID string, tracks []TrackPositions, snapshotID string) Request {
	return Request{
		Method:  http.MethodDelete,
		URL:     path("/users/%s/playlists/%s/tracks", userID, playlistID),
		Payload: map[string]any{"tracks": tracks, "snapshot_id": opt(snapshotID)},
	}
}

// PlaylistCoverUpload replaces a playlist's cover; image is base64 encoded JPEG data.
func PlaylistCoverUpload(playlistID, image string) Request {
	return Request{Method: http.MethodPut, URL: path("/playlists/%s/images", playlistID), Payload: map[string]any{"image": image}}
}

// Search queries the catalog. typ is a comma separated list such as "track,artist".
func Search(q, typ string, limit, offset int, market string) Request {
	return get("/search", page(limit, offset, defaultLimit, map[string]any{
		"q":      q,
		"type":   typ,
		"market": opt(market),
	}))
}

// MePlayerDevices lists the user's available playback devices.
func MePlayerDevices() Request {
	return get("/me/player/devices", nil)
}

// MePlayerCurrentlyPlaying reports the track playing now.
func MePlayerCurrentlyPlaying(market string) Request {
	return get("/me/player/currently-playing", map[string]any{"market": opt(market)})
}

// MePlayerPlay starts or resumes playback. offset is {"position": n} or {"uri": "..."}.
func MePlayerPlay(deviceID, contextURI string, uris []string, offset map[string]any) Request {
	payload := map[string]any{"context_uri": opt(contextURI)}
	if len(uris) > 0 {
		payload["uris"] = uris
	}
	if offset != nil {
		payload["offset"] = offset
	}
	return Request{
		Method:  http.MethodPut,
		URL:     "/me/player/play",
		Params:  map[string]any{"device_id": opt(deviceID)},
		Payload: payload,
	}
}

// MePlayerPause pauses playback on deviceID, or the active device when empty.
func MePlayerPause(deviceID string) Request {
	return Request{Method: http.MethodPut, URL: "/me/player/pause", Params: map[string]any{"device_id": opt(deviceID)}}
}

// MePlayerNext skips to the next track.
func MePlayerNext(deviceID string) Request {
	return Request{Method: http.MethodPost, URL: "/me/player/next", Params: map[string]any{"device_id": opt(deviceID)}}
}

// MePlayerPrevious skips to the previous track.
func MePlayerPrevious(deviceID string) Request {
	return Request{Method: http.MethodPost, URL: "/me/player/previous", Params: map[string]any{"device_id": opt(deviceID)}}
}

// MePlayerVolume sets the playback volume (0 to 100).
func MePlayerVolume(volumePercent int, deviceID string) Request {
	return Request{
		Method: http.MethodPut,
		URL:    "/me/player/volume",
		Params: map[string]any{"volume_percent": volumePercent, "device_id": opt(deviceID)},
	}
}

func get(p string, params map[string]any) Request {
	return Request{Method: http.MethodGet, URL: p, Params: params}
}

// path formats a route, escaping every identifier as a single path segment.
func path(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}

func page(limit, offset, def int, params map[string]any) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	params["limit"] = orDefault(limit, def)
	if offset < 0 {
		offset = 0
	}
	params["offset"] = offset
	return params
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func join(ids []string) string {
	return strings.Join(ids, ",")
}

// opt maps an absent optional string to nil so the dispatcher drops it.
func opt(s string) any {
	if s == "" {
		return nil
	}
	return s
}
