// Package server provides the HTTP routing, middleware, and OAuth callback handling used by the CLI login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it was added. [CallbackRouter] serves every registered route GET-only
// and answers browser favicon requests with 204.
//
// # OAuth Callback Handler
//
// [OAuthHandler] receives the authorization code redirect. It validates the state parameter (CSRF protection),
// passes the full callback URL to an [Exchanger] (the authenticator), and sends the outcome through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Loopback Server
//
// `spotx auth login` starts a [LoopbackServer] on the host and port of the configured redirect URI, opens
// the browser on the authorization URL and shuts the server down once the callback has been handled.
package server
