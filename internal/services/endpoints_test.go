package services

import (
	"net/http"
	"reflect"
	"testing"
)

func TestEndpoints(t *testing.T) {
	position := 3

	tests := []struct {
		name    string
		req     Request
		method  string
		url     string
		params  map[string]any
		payload map[string]any
	}{
		{
			name:   "album with market omitted",
			req:    Album("a1", ""),
			method: http.MethodGet,
			url:    "/albums/a1",
			params: map[string]any{"market": nil},
		},
		{
			name:   "several albums joins ids",
			req:    Albums([]string{"a1", "a2"}, "US"),
			method: http.MethodGet,
			url:    "/albums",
			params: map[string]any{"ids": "a1,a2", "market": "US"},
		},
		{
			name:   "album tracks default page",
			req:    AlbumTracks("a1", 0, 0, ""),
			method: http.MethodGet,
			url:    "/albums/a1/tracks",
			params: map[string]any{"limit": 50, "offset": 0, "market": nil},
		},
		{
			name:   "artist has no params",
			req:    Artist("x"),
			method: http.MethodGet,
			url:    "/artists/x",
		},
		{
			name:   "track ids are path escaped",
			req:    Track("a/b", ""),
			method: http.MethodGet,
			url:    "/tracks/a%2Fb",
			params: map[string]any{"market": nil},
		},
		{
			name:   "audio features for several tracks",
			req:    TracksAudioFeatures([]string{"t1", "t2"}),
			method: http.MethodGet,
			url:    "/audio-features",
			params: map[string]any{"ids": "t1,t2"},
		},
		{
			name:   "recommendations default limit and tuneables",
			req:    Recommendations(RecommendationsOpts{SeedGenres: []string{"house", "techno"}, Tuneables: map[string]any{"target_energy": 0.8}}),
			method: http.MethodGet,
			url:    "/recommendations",
			params: map[string]any{"limit": 100, "seed_genres": "house,techno", "target_energy": 0.8},
		},
		{
			name:   "me",
			req:    Me(),
			method: http.MethodGet,
			url:    "/me",
		},
		{
			name:   "followed artists",
			req:    MeFollowing("", 10, ""),
			method: http.MethodGet,
			url:    "/me/following",
			params: map[string]any{"type": "artist", "limit": 10, "after": nil},
		},
		{
			name:    "follow sends ids as payload",
			req:     MeFollow("artist", []string{"x", "y"}),
			method:  http.MethodPut,
			url:     "/me/following",
			params:  map[string]any{"type": "artist"},
			payload: map[string]any{"ids": []string{"x", "y"}},
		},
		{
			name:   "saved tracks",
			req:    MeTracks(20, 40, "GB"),
			method: http.MethodGet,
			url:    "/me/tracks",
			params: map[string]any{"limit": 20, "offset": 40, "market": "GB"},
		},
		{
			name:   "remove saved tracks",
			req:    MeTracksRemove([]string{"t1", "t2"}),
			method: http.MethodDelete,
			url:    "/me/tracks",
			params: map[string]any{"ids": "t1,t2"},
		},
		{
			name:   "top tracks default time range",
			req:    MeTop("tracks", 0, 0, ""),
			method: http.MethodGet,
			url:    "/me/top/tracks",
			params: map[string]any{"limit": 50, "offset": 0, "time_range": "medium_term"},
		},
		{
			name:   "playlist tracks default limit",
			req:    UserPlaylistTracks("u1", "p1", "", 0, 0, ""),
			method: http.MethodGet,
			url:    "/users/u1/playlists/p1/tracks",
			params: map[string]any{"limit": 100, "offset": 0, "fields": nil, "market": nil},
		},
		{
			name:    "create playlist",
			req:     UserPlaylistCreate("u1", "Mix", false, true, "desc"),
			method:  http.MethodPost,
			url:     "/users/u1/playlists",
			payload: map[string]any{"name": "Mix", "public": false, "collaborative": true, "description": "desc"},
		},
		{
			name:    "add tracks at position",
			req:     UserPlaylistTracksAdd("u1", "p1", []string{"spotify:track:1"}, &position),
			method:  http.MethodPost,
			url:     "/users/u1/playlists/p1/tracks",
			payload: map[string]any{"uris": []string{"spotify:track:1"}, "position": 3},
		},
		{
			name:   "remove all occurrences",
			req:    UserPlaylistTracksRemoveAll("u1", "p1", []string{"spotify:track:1"}, ""),
			method: http.MethodDelete,
			url:    "/users/u1/playlists/p1/tracks",
			payload: map[string]any{
				"tracks":      []map[string]any{{"uri": "spotify:track:1"}},
				"snapshot_id": nil,
			},
		},
		{
			name:   "search",
			req:    Search("daft punk", "artist", 5, 0, ""),
			method: http.MethodGet,
			url:    "/search",
			params: map[string]any{"q": "daft punk", "type": "artist", "limit": 5, "offset": 0, "market": nil},
		},
		{
			name:    "play context",
			req:     MePlayerPlay("", "spotify:album:1", nil, map[string]any{"position": 2}),
			method:  http.MethodPut,
			url:     "/me/player/play",
			params:  map[string]any{"device_id": nil},
			payload: map[string]any{"context_uri": "spotify:album:1", "offset": map[string]any{"position": 2}},
		},
		{
			name:   "volume",
			req:    MePlayerVolume(40, "d1"),
			method: http.MethodPut,
			url:    "/me/player/volume",
			params: map[string]any{"volume_percent": 40, "device_id": "d1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.req.Method != tt.method {
				t.Errorf("expected method %s, got %s", tt.method, tt.req.Method)
			}
			if tt.req.URL != tt.url {
				t.Errorf("expected URL %s, got %s", tt.url, tt.req.URL)
			}
			if !reflect.DeepEqual(tt.req.Params, tt.params) {
				t.Errorf("expected params %#v, got %#v", tt.params, tt.req.Params)
			}
			if !reflect.DeepEqual(tt.req.Payload, tt.payload) {
				t.Errorf("expected payload %#v, got %#v", tt.payload, tt.req.Payload)
			}
		})
	}
}
