package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Options configures an [Authenticator]. The zero value talks to the Spotify accounts service
// with lazy refresh disabled.
type Options struct {
	AutoRefresh time.Duration    // refresh on access when the token expires within this window; 0 disables
	HTTPClient  *http.Client     // defaults to [shared.NewHTTPClient] with default timeouts
	Clock       func() time.Time // defaults to [time.Now]
	Logger      *log.Logger
	AuthURL     string
	TokenURL    string
	OnToken     func(*Token) // called with a copy of every token a grant stores
}

// Authenticator owns the application credentials and the current token.
//
// It is safe for concurrent use.
type Authenticator struct {
	creds       Credentials
	authURL     string
	tokenURL    string
	autoRefresh time.Duration
	now         func() time.Time
	httpClient  *http.Client
	logger      *log.Logger
	onToken     func(*Token)

	code   *oauth2.Config
	client *clientcredentials.Config

	mu      sync.RWMutex
	token   *Token
	refresh singleflight.Group
}

// NewAuthenticator creates an unauthenticated [Authenticator]. ClientID and ClientSecret are required.
func NewAuthenticator(creds Credentials, opts Options) (*Authenticator, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	creds = creds.clone()

	if opts.AuthURL == "" {
		opts.AuthURL = AuthorizeURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = TokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = shared.NewHTTPClient(0, 0)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   opts.AuthURL,
		TokenURL:  opts.TokenURL,
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	return &Authenticator{
		creds:       creds,
		authURL:     opts.AuthURL,
		tokenURL:    opts.TokenURL,
		autoRefresh: opts.AutoRefresh,
		now:         opts.Clock,
		httpClient:  opts.HTTPClient,
		logger:      shared.WithLogger(opts.Logger, "component", "auth"),
		onToken:     opts.OnToken,
		code: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       creds.Scopes,
			Endpoint:     endpoint,
		},
		client: &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}, nil
}

// Credentials returns a copy of the application credentials.
func (a *Authenticator) Credentials() Credentials {
	return a.creds.clone()
}

// AuthorizationURL returns the URL the user is sent to for approving access. It performs no I/O.
func (a *Authenticator) AuthorizationURL() string {
	return buildAuthorizationURL(a.authURL, a.creds)
}

// ParseAuthorizationCode is [ParseAuthorizationCode].
func (a *Authenticator) ParseAuthorizationCode(urlOrCode string) (string, error) {
	return ParseAuthorizationCode(urlOrCode)
}

// ExchangeAuthorizationCode trades the code carried by a redirect callback (or the bare code) for a token.
func (a *Authenticator) ExchangeAuthorizationCode(ctx context.Context, urlOrCode string) error {
	code, err := ParseAuthorizationCode(urlOrCode)
	if err != nil {
		return err
	}

	var opts []oauth2.AuthCodeOption
	if scope := a.creds.ScopeString(); scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", scope))
	}
	if a.creds.State != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", a.creds.State))
	}

	issued := a.now()
	tok, err := a.code.Exchange(a.clientContext(ctx), code, opts...)
	if err != nil {
		return a.grantError(err)
	}

	return a.store("authorization_code", tok, issued, "")
}

// RequestClientCredentialsToken obtains an app-level token. Such tokens carry no refresh token.
func (a *Authenticator) RequestClientCredentialsToken(ctx context.Context) error {
	issued := a.now()
	tok, err := a.client.Token(a.clientContext(ctx))
	if err != nil {
		return a.grantError(err)
	}

	return a.store("client_credentials", tok, issued, "")
}

// RefreshToken exchanges the current refresh token for a new token, regardless of expiry.
func (a *Authenticator) RefreshToken(ctx context.Context) error {
	current := a.current()
	if current == nil {
		return shared.ErrNotAuthenticated
	}
	if current.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	issued := a.now()
	src := a.code.TokenSource(a.clientContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return a.grantError(err)
	}

	return a.store("refresh_token", tok, issued, current.RefreshToken)
}

// RefreshIfExpiringSoon renews the token when it expires within window: through the refresh token
// when there is one, else through client credentials. It makes no request otherwise.
func (a *Authenticator) RefreshIfExpiringSoon(ctx context.Context, window time.Duration) error {
	current := a.current()
	if current == nil {
		return shared.ErrNotAuthenticated
	}
	if !current.ExpiringWithin(a.now(), window) {
		return nil
	}

	// The flight outlives whichever caller started it; each caller only stops waiting on its own ctx.
	flight := a.refresh.DoChan(refreshKey, func() (any, error) {
		// a flight that finished while we waited may already have replaced the token
		current := a.current()
		if current == nil || !current.ExpiringWithin(a.now(), window) {
			return nil, nil
		}

		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.flightTimeout())
		defer cancel()

		a.logger.Debug("token expiring, renewing", "expires_at", current.ExpiresAt, "window", window)
		if current.RefreshToken != "" {
			return nil, a.RefreshToken(flightCtx)
		}
		return nil, a.RequestClientCredentialsToken(flightCtx)
	})

	select {
	case res := <-flight:
		return res.Err
	case <-ctx.Done():
		return shared.NewTransportError(http.MethodPost, a.tokenURL, ctx.Err())
	}
}

func (a *Authenticator) flightTimeout() time.Duration {
	if a.httpClient.Timeout > 0 {
		return a.httpClient.Timeout
	}
	return shared.DefaultHTTPTimeout
}

// ValidToken returns the current access token, renewing it first when auto refresh is enabled.
func (a *Authenticator) ValidToken(ctx context.Context) (string, error) {
	if a.autoRefresh > 0 {
		if err := a.RefreshIfExpiringSoon(ctx, a.autoRefresh); err != nil {
			return "", err
		}
	}

	current := a.current()
	if current == nil {
		return "", shared.ErrNotAuthenticated
	}
	return current.AccessToken, nil
}

// Token returns a copy of the current token, or nil before the first grant.
func (a *Authenticator) Token() *Token {
	return a.current().clone()
}

// SetToken restores a previously issued token (for example one loaded from storage). nil clears it.
func (a *Authenticator) SetToken(t *Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = t.clone()
}

// Authenticated reports whether a token is held.
func (a *Authenticator) Authenticated() bool {
	return a.current() != nil
}

func (a *Authenticator) current() *Token {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *Authenticator) store(grant string, tok *oauth2.Token, issued time.Time, previousRefresh string) error {
	t, err := newToken(tok, issued)
	if err != nil {
		return err
	}
	if t.RefreshToken == "" {
		t.RefreshToken = previousRefresh
	}

	a.mu.Lock()
	a.token = t
	a.mu.Unlock()

	a.logger.Debug("token stored", "grant", grant, "expires_at", t.ExpiresAt, "refreshable", t.RefreshToken != "")

	if a.onToken != nil {
		a.onToken(t.clone())
	}
	return nil
}

func (a *Authenticator) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// grantError maps x/oauth2 failures onto the shared error kinds.
func (a *Authenticator) grantError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &shared.TokenExchangeError{Status: status, Body: string(retrieveErr.Body)}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return shared.NewTransportError(http.MethodPost, a.tokenURL, err)
	}

	return fmt.Errorf("%w: %v", shared.ErrInvalidTokenResponse, err)
}
