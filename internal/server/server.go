// package server contains the loopback HTTP server and handlers used by the spotx CLI
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers served by the loopback server.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router registers [Handler] values behind a middleware stack.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handler(handler Handler)                          // Handler registers every route of handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

var _ Router = (*CallbackRouter)(nil)

// RequestLogger logs every request at debug level. Query strings are left out since they carry authorization codes.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// LoopbackServer serves a [Router] on a local address for the lifetime of one authorization flow.
type LoopbackServer struct {
	srv    *http.Server
	errs   chan error
	logger *log.Logger
}

// NewLoopbackServer creates a server for addr (host:port). It does not listen until [LoopbackServer.Start].
func NewLoopbackServer(addr string, handler http.Handler, logger *log.Logger) *LoopbackServer {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &LoopbackServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		errs:   make(chan error, 1),
		logger: logger,
	}
}

// Start binds the listener and serves in the background. Bind failures are returned directly;
// later serve failures arrive on [LoopbackServer.Errors].
func (s *LoopbackServer) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		s.logger.Debug("loopback server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	return ln.Addr(), nil
}

// Errors reports a serve failure after [LoopbackServer.Start] succeeded.
func (s *LoopbackServer) Errors() <-chan error {
	return s.errs
}

// Shutdown gracefully stops the server, waiting at most timeout for open requests.
func (s *LoopbackServer) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
