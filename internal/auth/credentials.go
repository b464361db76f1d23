package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/spotx/internal/shared"
)

const (
	AuthorizeURL = "https://accounts.spotify.com/authorize"
	TokenURL     = "https://accounts.spotify.com/api/token"
)

// Credentials identifies a Spotify application and the access it asks for.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	State        string // opaque anti-CSRF value echoed back on the redirect
}

// ScopeString returns the scopes in wire format (space separated).
func (c Credentials) ScopeString() string {
	return strings.Join(c.Scopes, " ")
}

func (c Credentials) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", shared.ErrMissingCredentials)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: client_secret is required", shared.ErrMissingCredentials)
	}
	return nil
}

func (c Credentials) clone() Credentials {
	c.Scopes = append([]string(nil), c.Scopes...)
	return c
}

// buildAuthorizationURL appends the authorize query to base. scope and state are omitted when empty.
func buildAuthorizationURL(base string, c Credentials) string {
	params := url.Values{
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"response_type": {"code"},
	}
	if scope := c.ScopeString(); scope != "" {
		params.Set("scope", scope)
	}
	if c.State != "" {
		params.Set("state", c.State)
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

// ParseAuthorizationCode extracts the authorization code from a redirect callback.
//
// URL-shaped input (an http(s) URL, a request URI starting with "/", or anything carrying a query)
// must contain a code parameter; otherwise [shared.ErrMalformedCallback] is returned, including the
// provider's error parameter when present. Any other input is taken as the code itself.
func ParseAuthorizationCode(urlOrCode string) (string, error) {
	s := strings.TrimSpace(urlOrCode)
	if s == "" {
		return "", fmt.Errorf("%w: empty callback", shared.ErrMalformedCallback)
	}

	if !isURLShaped(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedCallback, err)
	}

	q := u.Query()
	if code := q.Get("code"); code != "" {
		return code, nil
	}

	if providerErr := q.Get("error"); providerErr != "" {
		return "", fmt.Errorf("%w: authorization denied: %s", shared.ErrMalformedCallback, providerErr)
	}
	return "", fmt.Errorf("%w: missing code parameter", shared.ErrMalformedCallback)
}

func isURLShaped(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(s, "/") ||
		strings.Contains(s, "?")
}
