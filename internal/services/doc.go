// Package services talks to the Spotify Web API.
//
// # Dispatcher
//
// [Dispatcher] is the single chokepoint for API traffic. It takes a [Request] descriptor, asks its
// [TokenProvider] (an [auth.Authenticator]) for a bearer token on every call, resolves relative paths
// against [BaseURL], drops nil params and payload entries and decodes the JSON response.
//
// # Endpoint Builders
//
// The functions in endpoints.go ([Album], [MeTracks], [Search], ...) only construct a [Request].
// [Client] exposes each of them as a method that dispatches the result and returns the decoded body.
//
// # Spotify Implementation
//
// [SpotifyService] is the typed layer used by the CLI and the exporters. It decodes into the Spotify*
// response types and maps playlists to models.Playlist and models.Track, following absolute next links
// for pagination. It implements [Service].
//
// # Error Handling
//
// Errors use the kinds defined in the shared package:
//   - [shared.ErrNotAuthenticated] : no token has been acquired
//   - [shared.APIError] : non-2xx response (matches [shared.ErrTokenExpired] on 401 and [shared.ErrNotFound] on 404)
//   - [shared.TransportError] : connection failures and timeouts
//
// Nothing is retried.
package services
