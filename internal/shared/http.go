package shared

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// NewHTTPClient builds the [http.Client] shared by the authenticator and dispatcher.
//
// timeout bounds the whole exchange, connectTimeout bounds dialing and the TLS handshake.
// Zero values fall back to [DefaultHTTPTimeout] and [DefaultConnectTimeout].
func NewHTTPClient(timeout, connectTimeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectTimeout,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}

// NewTransportError classifies a failed round trip, flagging deadline and net timeouts.
func NewTransportError(op, rawURL string, err error) *TransportError {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	return &TransportError{Op: op, URL: rawURL, Timeout: timeout, Err: err}
}
