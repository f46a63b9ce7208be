package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Credential lifecycle errors
	//
	// ErrHandshakeState: the callback arrived without a matching code verifier
	// in the session (replayed callback or lost session). The caller must
	// restart the login flow.
	//
	// ErrUpstreamAuth: the authorization server rejected the code or refresh
	// token. The caller must restart the login flow.
	//
	// ErrRefreshUnavailable: a transient upstream or network failure during
	// refresh. The caller may retry; a still-valid token may continue in use.
	//
	// ErrStoreUnavailable: the durable store is unreachable. The manager
	// degrades to session-only operation and logs the inconsistency.
	ErrHandshakeState     = fmt.Errorf("handshake state missing or mismatched")
	ErrUpstreamAuth       = fmt.Errorf("authorization server rejected credentials")
	ErrRefreshUnavailable = fmt.Errorf("token refresh unavailable")
	ErrStoreUnavailable   = fmt.Errorf("credential store unavailable")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrNoRefreshToken     = fmt.Errorf("no refresh token available")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrRecordNotFound     = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
