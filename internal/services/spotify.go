// Spotify implementation of [Authorizer] and [MusicService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/moodify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify's published rate guidance sits around a rolling 30s window;
	// a small steady-state limit keeps bursts from tripping 429s.
	requestsPerSecond = 8
)

// spotifyScopes are the scopes requested during the PKCE handshake: profile
// lookup, library reads for seeds, and playlist writes.
var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-top-read",
	"playlist-modify-public",
	"playlist-modify-private",
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyUser represents a Spotify user profile response.
type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// spotifyPlaylist represents a Spotify playlist response.
type spotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type spotifyTrack struct {
	ID string `json:"id"`
}

type savedTrackItem struct {
	Track spotifyTrack `json:"track"`
}

// spotifyPaginatedSaved represents a paginated response of saved tracks.
type spotifyPaginatedSaved struct {
	Items []savedTrackItem `json:"items"`
	Next  *string          `json:"next"`
}

// SpotifyService implements [Authorizer] and [MusicService] for the Spotify
// Web API. It holds no user token state: access tokens are supplied per call
// by the credential lifecycle manager.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given OAuth client credentials.
//
// client_secret may be empty for a public PKCE client.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/auth/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: credentials["client_secret"],
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// OAuthConfig exposes the underlying [oauth2.Config] for callback handlers.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthCodeURL builds the authorization URL with the S256 challenge derived
// from verifier and the requested scopes.
func (s *SpotifyService) AuthCodeURL(state, verifier string) string {
	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code and its PKCE verifier for tokens.
func (s *SpotifyService) Exchange(ctx context.Context, code, verifier string) (*TokenSet, error) {
	token, err := s.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, classifyTokenError("code exchange", err)
	}
	return tokenSetFrom(token), nil
}

// Refresh trades a refresh token for a fresh token set. The returned set's
// RefreshToken is empty unless Spotify rotated it.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: empty refresh token", shared.ErrNoRefreshToken)
	}

	src := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, classifyTokenError("refresh", err)
	}

	set := tokenSetFrom(token)
	if set.RefreshToken == refreshToken {
		// The oauth2 package copies the old refresh token forward when the
		// server omits one; an unchanged value is not a rotation.
		set.RefreshToken = ""
	}
	return set, nil
}

// tokenSetFrom converts an [oauth2.Token] into the internal TokenSet shape.
// The oauth2 package already derives Expiry from the issuance instant plus
// the server-declared expires_in.
func tokenSetFrom(token *oauth2.Token) *TokenSet {
	return &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		TokenType:    token.TokenType,
	}
}

// classifyTokenError maps token-endpoint failures onto the error taxonomy:
// an HTTP rejection from the authorization server is an auth error, anything
// else (network, 5xx transport) is transient.
func classifyTokenError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= 500 {
			return fmt.Errorf("%w: %s: %v", shared.ErrRefreshUnavailable, op, err)
		}
		return fmt.Errorf("%w: %s: %v", shared.ErrUpstreamAuth, op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrRefreshUnavailable, op, err)
}

// doRequest performs a bearer-authenticated HTTP request to the Spotify API,
// waiting on the rate limiter first.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint, accessToken string, body, result any) error {
	if accessToken == "" {
		return shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, spotifyBaseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: spotify rejected bearer token", shared.ErrTokenExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context, accessToken string) (*UserProfile, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &UserProfile{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email}, nil
}

// SeedTrackIDs collects track ids from the user's saved tracks, following
// pagination until limit is reached.
func (s *SpotifyService) SeedTrackIDs(ctx context.Context, accessToken string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	ids := make([]string, 0, limit)
	offset := 0
	for len(ids) < limit {
		pageSize := limit - len(ids)
		if pageSize > 50 {
			pageSize = 50
		}

		endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", pageSize, offset)
		var page spotifyPaginatedSaved
		if err := s.doRequest(ctx, http.MethodGet, endpoint, accessToken, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageSize
	}

	return ids, nil
}

// CreatePlaylist creates an empty private playlist owned by userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, accessToken, userID, name, description string) (*Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	var created spotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, accessToken, body, &created); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          created.ID,
		Name:        created.Name,
		URI:         created.URI,
		ExternalURL: created.ExternalURLs.Spotify,
	}, nil
}

// AddTracks appends tracks to a playlist in batches of 100 (the API maximum).
func (s *SpotifyService) AddTracks(ctx context.Context, accessToken, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(trackIDs); start += 100 {
		end := start + 100
		if end > len(trackIDs) {
			end = len(trackIDs)
		}

		uris := make([]string, 0, end-start)
		for _, id := range trackIDs[start:end] {
			if strings.HasPrefix(id, "spotify:track:") {
				uris = append(uris, id)
			} else {
				uris = append(uris, "spotify:track:"+id)
			}
		}

		body := map[string]any{"uris": uris}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, accessToken, body, nil); err != nil {
			return err
		}
	}

	return nil
}
