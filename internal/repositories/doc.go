// Package repositories implements SQLite persistence for spotx.
//
// [TokenRepository] stores one OAuth token per Spotify application, keyed by client id, so the CLI can
// restore a session across invocations and persist every refresh. The schema is created by the embedded
// migrations in the shared package.
package repositories
