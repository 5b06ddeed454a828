// Package server provides HTTP routing, middleware, and the handlers behind
// the rewind serve command.
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
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// During rewind auth a temporary HTTP server starts on the configured port,
// handles the callback, and shuts down after receiving the OAuth token.
//
// # Service Handlers
//
// [ActivityHandler] accepts first-party listening events over POST /activities
// and appends them to the local activity log. [ReportHandler] computes the
// year-in-review report on demand for GET /report. [HealthHandler] answers
// GET /healthz for liveness checks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
