// Package server provides HTTP routing, middleware, and OAuth callback handling for the CLI auth flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth 1.0a authorization callback.
//
// The handler checks that the provider echoed back the request token this flow issued,
// captures the verifier, and sends the result through a channel. The access token
// exchange happens in the services layer.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the auth command, a temporary HTTP server starts on localhost
// (address from [server] config), handles the Discogs authorization redirect,
// and shuts down after the verifier arrives.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
