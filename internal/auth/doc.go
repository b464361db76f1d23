// Package auth manages OAuth 2.0 credentials and tokens for the Spotify accounts service.
//
// # Grants
//
// [Authenticator] performs the authorization code grant ([Authenticator.ExchangeAuthorizationCode]),
// the client credentials grant ([Authenticator.RequestClientCredentialsToken]) and the refresh token
// grant ([Authenticator.RefreshToken]). All three POST a form to the token endpoint using HTTP Basic
// client authentication, through [golang.org/x/oauth2].
//
// # Token lifecycle
//
// Every successful grant replaces the current [Token] wholesale. ExpiresAt is stamped from the
// authenticator's clock, read right before the request is sent, plus the server's expires_in.
// A refresh response that omits refresh_token keeps the previous refresh token.
//
// When Options.AutoRefresh is set, [Authenticator.ValidToken] refreshes lazily: a token expiring
// within the window is refreshed with its refresh token, or re-requested through client credentials
// when it has none. Concurrent callers share a single in-flight refresh.
//
// # Callbacks
//
// [ParseAuthorizationCode] accepts whatever redirect URL a web handler received (absolute or
// request-relative) or a bare code, which keeps this package independent of any web framework.
//
// # Errors
//
//   - [shared.ErrMalformedCallback] : callback without a code
//   - [shared.TokenExchangeError] : non-2xx token endpoint response
//   - [shared.TransportError] : DNS, connect or timeout failures
//   - [shared.ErrNoRefreshToken] : refresh requested without a refresh token
//   - [shared.ErrNotAuthenticated] : token requested before any grant
package auth
