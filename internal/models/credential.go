package models

import (
	"fmt"
	"time"
)

// CredentialRecord represents one authenticated user's standing with Spotify.
//
// The record is keyed by the Spotify-assigned user id. ExpiresAt is always
// derived from issuance time plus the server-declared lifetime, never taken
// from client input. A record is mutated in place on every refresh: the
// access token and expiry always change, the refresh token only when Spotify
// rotates it.
type CredentialRecord struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Validate checks the record invariants: a present access token requires a
// present refresh token (Spotify never grants implicit-only tokens), and a
// keyed record must carry a user id.
func (c CredentialRecord) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("credential record missing user id")
	}
	if c.AccessToken != "" && c.RefreshToken == "" {
		return fmt.Errorf("credential record has access token without refresh token")
	}
	return nil
}

// ExpiringSoon reports whether the access token is within skew of expiry at
// the given instant. A missing token or zero expiry always reports true.
func (c CredentialRecord) ExpiringSoon(now time.Time, skew time.Duration) bool {
	if c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt.Add(-skew))
}

// CredentialUpdate carries the partial fields written back on refresh.
// A nil RefreshToken means the previous refresh token is retained.
type CredentialUpdate struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    time.Time
}
