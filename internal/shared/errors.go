package shared

import (
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed           = fmt.Errorf("authentication failed")
	ErrNotAuthenticated     = fmt.Errorf("not authenticated")
	ErrTokenExpired         = fmt.Errorf("access token expired")
	ErrNoRefreshToken       = fmt.Errorf("no refresh token available")
	ErrMalformedCallback    = fmt.Errorf("malformed authorization callback")
	ErrInvalidTokenResponse = fmt.Errorf("invalid token response")
	ErrTimeout              = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrTransport          = fmt.Errorf("transport failure")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// TokenExchangeError is returned when the accounts service answers a token request with a non-2xx status.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: status %d: %s", e.Status, e.Body)
}

// Is reports whether target is [ErrAuthFailed].
func (e *TokenExchangeError) Is(target error) bool {
	return target == ErrAuthFailed
}

// APIError is returned by the dispatcher for any non-2xx API response.
//
// A 401 also matches [ErrTokenExpired] and a 404 matches [ErrNotFound].
type APIError struct {
	Status int
	Method string
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: %s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPIRequest:
		return true
	case ErrTokenExpired:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError wraps DNS, connection and timeout failures so they are never confused with HTTP status errors.
type TransportError struct {
	Op      string
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: timed out: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrTimeout:
		return e.Timeout
	}
	return false
}
