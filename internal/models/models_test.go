package models

import (
	"testing"
	"time"
)

func TestCredentialRecord(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			record  CredentialRecord
			wantErr bool
		}{
			{
				name: "complete record",
				record: CredentialRecord{
					UserID:       "user-1",
					AccessToken:  "access",
					RefreshToken: "refresh",
				},
				wantErr: false,
			},
			{
				name:    "user id only",
				record:  CredentialRecord{UserID: "user-1"},
				wantErr: false,
			},
			{
				name:    "missing user id",
				record:  CredentialRecord{AccessToken: "access", RefreshToken: "refresh"},
				wantErr: true,
			},
			{
				name:    "access token without refresh token",
				record:  CredentialRecord{UserID: "user-1", AccessToken: "access"},
				wantErr: true,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.record.Validate()
				if (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("ExpiringSoon", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		skew := 5 * time.Minute

		tc := []struct {
			name   string
			record CredentialRecord
			want   bool
		}{
			{
				name: "fresh token",
				record: CredentialRecord{
					AccessToken: "access",
					ExpiresAt:   now.Add(time.Hour),
				},
				want: false,
			},
			{
				name: "inside skew window",
				record: CredentialRecord{
					AccessToken: "access",
					ExpiresAt:   now.Add(3 * time.Minute),
				},
				want: true,
			},
			{
				name: "exactly at skew boundary",
				record: CredentialRecord{
					AccessToken: "access",
					ExpiresAt:   now.Add(skew),
				},
				want: true,
			},
			{
				name: "already expired",
				record: CredentialRecord{
					AccessToken: "access",
					ExpiresAt:   now.Add(-time.Minute),
				},
				want: true,
			},
			{
				name:   "missing token",
				record: CredentialRecord{ExpiresAt: now.Add(time.Hour)},
				want:   true,
			},
			{
				name:   "zero expiry",
				record: CredentialRecord{AccessToken: "access"},
				want:   true,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.record.ExpiringSoon(now, skew); got != tt.want {
					t.Errorf("ExpiringSoon() = %v, want %v", got, tt.want)
				}
			})
		}
	})
}

func TestPlaylistRecord(t *testing.T) {
	t.Run("NewPlaylistRecord", func(t *testing.T) {
		record := NewPlaylistRecord(1, "user-1", "Happy Mix", []string{"happy"}, []string{"t1", "t2"})

		if record.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence())
		}
		if record.TrackCount() != 2 {
			t.Errorf("expected 2 tracks, got %d", record.TrackCount())
		}
		if record.CreatedAt().IsZero() || record.UpdatedAt().IsZero() {
			t.Error("expected timestamps to be set")
		}
		if record.DeletedAt() != nil {
			t.Error("expected new record not to be deleted")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := NewPlaylistRecord(1, "user-1", "Happy Mix", nil, nil).Validate(); err != nil {
			t.Errorf("expected valid record, got %v", err)
		}
		if err := NewPlaylistRecord(1, "", "Happy Mix", nil, nil).Validate(); err == nil {
			t.Error("expected error for missing user id")
		}
		if err := NewPlaylistRecord(1, "user-1", "", nil, nil).Validate(); err == nil {
			t.Error("expected error for missing name")
		}
	})

	t.Run("SetSpotify", func(t *testing.T) {
		record := NewPlaylistRecord(1, "user-1", "Happy Mix", nil, nil)
		record.SetSpotify("sp-1", "spotify:playlist:sp-1", "https://open.spotify.com/playlist/sp-1")

		if record.SpotifyID() != "sp-1" {
			t.Errorf("expected spotify id set, got %s", record.SpotifyID())
		}
		if record.URI() != "spotify:playlist:sp-1" {
			t.Errorf("expected uri set, got %s", record.URI())
		}
		if record.ExternalURL() != "https://open.spotify.com/playlist/sp-1" {
			t.Errorf("expected external url set, got %s", record.ExternalURL())
		}
	})
}
