// Package server provides HTTP routing, middleware, and login handling for CLI and web interfaces.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method-aware patterns on [http.ServeMux].
//
// # Login Callback Handler
//
// [CallbackHandler] implements the authorization code callback for the terminal login flow.
//
// The handler validates the state parameter (CSRF protection), completes the PKCE exchange through
// the lifecycle manager, and sends the result through a channel so the CLI can block until login finishes.
//
// It only processes one callback to prevent replay attacks.
//
// # Web Service
//
// [API] carries the long-running service handlers: login and callback bound to cookie sessions,
// mood listing and filter previews, playlist generation, and generation history.
//
// [WithSessions] resolves each request's in-process session from its cookie, and [LogRequests]
// emits one structured log line per request.
package server
