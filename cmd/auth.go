package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the authorization URL for the configured credentials and scopes.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.auth.AuthorizationURL())
}

// AuthLogin performs the authorization code flow.
//
// Starts a loopback HTTP server on the configured address, opens the browser at the authorization URL,
// and waits for the redirect. The callback handler exchanges the code; the token is persisted by the
// authenticator's OnToken hook.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	creds := r.auth.Credentials()
	if creds.RedirectURI == "" {
		return fmt.Errorf("%w: credentials.spotify.redirect_uri is required for login", shared.ErrInvalidConfig)
	}

	handler := server.NewOAuthHandler(r.auth, creds.State, callbackPath(creds.RedirectURI))
	router := server.NewCallbackRouter()
	router.Use(server.RequestLogger(shared.WithLogger(r.logger, "component", "server")))
	router.Handler(handler)

	srv := server.NewLoopbackServer(r.config.Server.Addr(), router, r.logger)
	addr, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() {
		if err := srv.Shutdown(5 * time.Second); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()
	r.logger.Info("waiting for authorization callback", "addr", addr.String())

	authURL := r.auth.AuthorizationURL()
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlain("%s\n", r.palette.Warning("Could not open browser automatically."))
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = loginTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	case err := <-srv.Errors():
		return fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	r.writePlain("%s\n", r.palette.Success("Authorization successful"))
	r.writePlain("You can now use: spotx spotify playlists\n")
	return nil
}

// AuthExchange exchanges a redirect URL or bare code pasted by the user.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	callback := cmd.StringArg("callback")
	if callback == "" {
		return fmt.Errorf("%w: redirect URL or authorization code", shared.ErrMissingArgument)
	}
	if err := r.connect(); err != nil {
		return err
	}

	if err := r.auth.ExchangeAuthorizationCode(ctx, callback); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.Success("Authorization code exchanged"))
}

// AuthClientCredentials requests an app-only token.
func (r *Runner) AuthClientCredentials(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.auth.RequestClientCredentialsToken(ctx); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.Success("Client credentials token issued"))
}

// AuthRefresh forces a refresh of the stored token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.auth.RefreshToken(ctx); err != nil {
		if errors.Is(err, shared.ErrNoRefreshToken) {
			return fmt.Errorf("%w: run spotx auth login or spotx auth client-credentials", err)
		}
		return err
	}

	token := r.auth.Token()
	return r.writePlain("%s\n", r.palette.Success("Token refreshed, "+expiryString(token.ExpiresAt, time.Now())))
}

type authStatus struct {
	Authenticated bool      `json:"authenticated"`
	ClientID      string    `json:"client_id"`
	TokenType     string    `json:"token_type,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitzero"`
	Expired       bool      `json:"expired"`
	Refreshable   bool      `json:"refreshable"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// AuthStatus reports whether a token is stored and when it expires. It never prints the token itself.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	now := time.Now()
	status := authStatus{ClientID: r.auth.Credentials().ClientID}
	if token := r.auth.Token(); token != nil {
		status.Authenticated = true
		status.TokenType = token.TokenType
		status.Scope = token.Scope
		status.ExpiresAt = token.ExpiresAt
		status.Expired = token.ExpiringWithin(now, 0)
		status.Refreshable = token.RefreshToken != ""
	}
	if updated, err := r.tokens.UpdatedAt(status.ClientID); err == nil {
		status.UpdatedAt = updated
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlainHeader("Authentication")
	if !status.Authenticated {
		r.writePlain("%s\n", r.palette.Failure("Not authenticated"))
		r.writePlain("%s\n", r.palette.Help("Run: spotx auth login"))
		return nil
	}

	r.writePlain("%s\n", r.palette.Success("Authenticated"))
	r.writePlain("%s\n", r.palette.KeyValue("Client", status.ClientID))
	r.writePlain("%s\n", r.palette.KeyValue("Token type", status.TokenType))
	if status.Scope != "" {
		r.writePlain("%s\n", r.palette.KeyValue("Scope", status.Scope))
	}
	r.writePlain("%s\n", r.palette.KeyValue("Expires", expiryString(status.ExpiresAt, now)))
	r.writePlain("%s\n", r.palette.KeyValue("Refreshable", status.Refreshable))
	if !status.UpdatedAt.IsZero() {
		r.writePlain("%s\n", r.palette.KeyValue("Saved", status.UpdatedAt.Local().Format(time.RFC3339)))
	}
	return nil
}

// AuthLogout deletes the stored token for the configured client.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	if err := r.tokens.Delete(r.auth.Credentials().ClientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.writePlain("%s\n", r.palette.Warning("No stored token"))
		}
		return err
	}
	return r.writePlain("%s\n", r.palette.Success("Stored token deleted"))
}

// callbackPath returns the path component of the redirect URI, defaulting to [server.DefaultCallbackPath].
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return server.DefaultCallbackPath
	}
	return u.Path
}

func expiryString(expiresAt, now time.Time) string {
	switch {
	case expiresAt.IsZero():
		return "never expires"
	case !expiresAt.After(now):
		return fmt.Sprintf("expired %s ago", now.Sub(expiresAt).Round(time.Second))
	default:
		return fmt.Sprintf("expires in %s", expiresAt.Sub(now).Round(time.Second))
	}
}
