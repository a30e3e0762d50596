// package server hosts the loopback HTTP surface for the OAuth 1.0a
// authorization flow. It serves a single callback route for the lifetime
// of one login and is shut down as soon as the verifier arrives.
package server

import "net/http"

// Middleware decorates an [http.Handler] with behavior that runs around it.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that declares the paths it serves, so a
// router can mount it without per-route wiring.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router mounts handlers and middleware and serves the combined result.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
}
