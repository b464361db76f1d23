// Package models defines the provider-neutral data transfer objects produced by the Spotify service layer
// and consumed by the formatters and the bulk exporter.
//
//   - [Playlist] : playlist metadata as listed by the API
//   - [Track] : song metadata with the ISRC from external_ids
//   - [PlaylistExport] : a playlist with its complete track listing
//
// These types carry no behavior; persistence of OAuth tokens lives in the repositories package.
package models
