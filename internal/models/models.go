package models

import "time"

// Playlist is a playlist summary as listed by the API.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	URI         string `json:"uri"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Track is a single playlist or library entry.
type Track struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Duration int       `json:"duration"` // Duration in seconds
	ISRC     string    `json:"isrc,omitempty"`
	URI      string    `json:"uri"`
	AddedAt  time.Time `json:"added_at,omitzero"`
}

// PlaylistExport is a playlist with every one of its tracks.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}
