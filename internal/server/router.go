package server

import (
	"net/http"
	"strings"
)

// CallbackRouter routes loopback requests to registered [Handler] values.
//
// Routes answer GET only; other methods get 405 with an Allow header and never reach the one-shot
// callback. Browser requests for /favicon.ico get an empty 204.
type CallbackRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewCallbackRouter creates an empty [CallbackRouter].
func NewCallbackRouter() *CallbackRouter {
	r := &CallbackRouter{mux: http.NewServeMux()}
	r.mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// Use appends middleware. Handlers registered afterwards run inside them in the order they were added.
func (r *CallbackRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handler registers handler on each of its [Handler.Routes].
func (r *CallbackRouter) Handler(handler Handler) {
	wrapped := r.wrap(allowMethods(handler, http.MethodGet))
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler].
func (r *CallbackRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// wrap applies the middleware stack, outermost first.
func (r *CallbackRouter) wrap(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}

func allowMethods(next http.Handler, methods ...string) http.Handler {
	allow := strings.Join(methods, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		for _, m := range methods {
			if req.Method == m {
				next.ServeHTTP(w, req)
				return
			}
		}
		w.Header().Set("Allow", allow)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}
