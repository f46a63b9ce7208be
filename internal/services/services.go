// package services defines interfaces for the external collaborators:
// Spotify (accounts + resource API) and the recommendation microservice.
package services

import (
	"context"
	"time"

	"github.com/desertthunder/moodify/internal/moods"
)

// TokenSet is the result of an authorization-code exchange or a refresh.
//
// ExpiresAt is derived from the issuance instant plus the server-declared
// lifetime. RefreshToken is empty when the server did not rotate it.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	TokenType    string
}

// UserProfile is the subset of the Spotify profile the service consumes.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Playlist is a created Spotify playlist in the shape the service consumes.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	ExternalURL string `json:"external_url"`
}

// Authorizer covers the OAuth PKCE handshake and refresh against the
// authorization server. Implemented by [SpotifyService]; the credential
// lifecycle manager depends on this interface only.
type Authorizer interface {
	// AuthCodeURL builds the authorization URL carrying the state, the S256
	// code challenge derived from verifier, and the requested scopes.
	AuthCodeURL(state, verifier string) string

	// Exchange trades an authorization code plus its PKCE verifier for a
	// token set. A rejection by the authorization server wraps
	// [shared.ErrUpstreamAuth].
	Exchange(ctx context.Context, code, verifier string) (*TokenSet, error)

	// Refresh trades a refresh token for a fresh token set. A rejection
	// wraps [shared.ErrUpstreamAuth]; transient failures wrap
	// [shared.ErrRefreshUnavailable].
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// MusicService covers the bearer-token-authenticated resource API. Tokens are
// passed per call because the credential lifecycle manager owns them; the
// client itself stays stateless across users.
type MusicService interface {
	// Profile fetches the authenticated user's profile.
	Profile(ctx context.Context, accessToken string) (*UserProfile, error)

	// SeedTrackIDs returns track ids from the user's library to seed
	// recommendations, at most limit.
	SeedTrackIDs(ctx context.Context, accessToken string, limit int) ([]string, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, accessToken, userID, name, description string) (*Playlist, error)

	// AddTracks appends tracks to a playlist.
	AddTracks(ctx context.Context, accessToken, playlistID string, trackIDs []string) error

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// Recommender covers the external recommendation microservice: seed track ids
// plus a composite mood filter in, an ordered track-id list out.
type Recommender interface {
	Recommend(ctx context.Context, trackIDs []string, filters moods.Filters) ([]string, error)
}
