// Package auth owns the credential lifecycle for Spotify users: the PKCE
// handshake, the request-scoped session cache, and the expiry/refresh
// algorithm that reconciles the session with the durable store.
//
// # Two-tier caching
//
// A [Session] is the fast path: an in-process, per-user request cache holding
// the code verifier during login and the token set afterwards. The injected
// [CredentialStore] is the durable source of truth keyed by the Spotify user
// id; it repairs cold sessions after a process restart. Both tiers are
// written on every refresh: the session keeps current requests on the
// zero-I/O path, the store lets a restart recover.
//
// # State machine
//
// Unauthenticated → [Manager.InitiateLogin] stores a single-use code verifier
// in the session → the callback hands the authorization code to
// [Manager.CompleteLogin], which exchanges code+verifier, resolves the
// Spotify user id, and persists the credential to both tiers →
// [Manager.GetValidAccessToken] serves the session token until it is within
// the refresh skew of expiry, then refreshes transparently. A refresh
// rejected by the authorization server logs the user out
// ([shared.ErrNotAuthenticated]); a transient refresh failure surfaces as
// [shared.ErrRefreshUnavailable] and may be retried.
//
// # Concurrency
//
// Handlers run one goroutine per request with no global serialization.
// Same-user refreshes are collapsed through a per-user mutex: the winner
// performs the upstream call, later arrivals re-check the session and find a
// fresh token. Store write failures after a successful refresh never fail
// the request; they are logged and repaired by a later read.
package auth
