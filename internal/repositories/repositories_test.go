package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleCredential(userID string) *models.CredentialRecord {
	return &models.CredentialRecord{
		UserID:       userID,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
	}
}

func TestCredentialRepository(t *testing.T) {
	t.Run("Set and Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		record := sampleCredential("user-1")

		if err := repo.Set(record); err != nil {
			t.Fatalf("failed to set credential: %v", err)
		}

		got, err := repo.Get("user-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}

		if got.AccessToken != "access-1" {
			t.Errorf("expected access token access-1, got %s", got.AccessToken)
		}
		if got.RefreshToken != "refresh-1" {
			t.Errorf("expected refresh token refresh-1, got %s", got.RefreshToken)
		}
		if !got.ExpiresAt.Equal(record.ExpiresAt) {
			t.Errorf("expected expiry %v, got %v", record.ExpiresAt, got.ExpiresAt)
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)

		_, err := repo.Get("nonexistent")
		if !errors.Is(err, shared.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Set Replaces Existing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)

		if err := repo.Set(sampleCredential("user-1")); err != nil {
			t.Fatalf("failed to set credential: %v", err)
		}

		updated := sampleCredential("user-1")
		updated.AccessToken = "access-2"
		updated.RefreshToken = "refresh-2"
		if err := repo.Set(updated); err != nil {
			t.Fatalf("failed to replace credential: %v", err)
		}

		got, err := repo.Get("user-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if got.AccessToken != "access-2" || got.RefreshToken != "refresh-2" {
			t.Errorf("expected replaced tokens, got %s / %s", got.AccessToken, got.RefreshToken)
		}
	})

	t.Run("Set ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		record := sampleCredential("user-1")
		record.RefreshToken = ""

		if err := repo.Set(record); err == nil {
			t.Fatal("expected validation error for access token without refresh token")
		}
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("WithRotation", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCredentialRepository(db)
			if err := repo.Set(sampleCredential("user-1")); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}

			rotated := "refresh-2"
			expiry := time.Now().Add(2 * time.Hour).UTC()
			err := repo.Update("user-1", models.CredentialUpdate{
				AccessToken:  "access-2",
				RefreshToken: &rotated,
				ExpiresAt:    expiry,
			})
			if err != nil {
				t.Fatalf("failed to update credential: %v", err)
			}

			got, err := repo.Get("user-1")
			if err != nil {
				t.Fatalf("failed to get credential: %v", err)
			}
			if got.AccessToken != "access-2" {
				t.Errorf("expected new access token, got %s", got.AccessToken)
			}
			if got.RefreshToken != "refresh-2" {
				t.Errorf("expected rotated refresh token, got %s", got.RefreshToken)
			}
		})

		t.Run("WithoutRotation", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCredentialRepository(db)
			if err := repo.Set(sampleCredential("user-1")); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}

			err := repo.Update("user-1", models.CredentialUpdate{
				AccessToken: "access-2",
				ExpiresAt:   time.Now().Add(2 * time.Hour).UTC(),
			})
			if err != nil {
				t.Fatalf("failed to update credential: %v", err)
			}

			got, err := repo.Get("user-1")
			if err != nil {
				t.Fatalf("failed to get credential: %v", err)
			}
			if got.RefreshToken != "refresh-1" {
				t.Errorf("expected refresh token retained, got %s", got.RefreshToken)
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCredentialRepository(db)

			err := repo.Update("nonexistent", models.CredentialUpdate{
				AccessToken: "access-1",
				ExpiresAt:   time.Now().Add(time.Hour),
			})
			if !errors.Is(err, shared.ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
		})

		t.Run("MissingAccessToken", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCredentialRepository(db)

			err := repo.Update("user-1", models.CredentialUpdate{})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func samplePlaylist(userID, name string) *models.PlaylistRecord {
	return models.NewPlaylistRecord(0, userID, name,
		[]string{"happy", "party"}, []string{"t1", "t2", "t3"})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		record := samplePlaylist("user-1", "Happy Mix")
		record.SetSpotify("sp-1", "spotify:playlist:sp-1", "https://open.spotify.com/playlist/sp-1")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if record.ID() == "" {
			t.Error("playlist ID should be set after creation")
		}
		if record.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence())
		}
	})

	t.Run("Create ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		if err := repo.Create(samplePlaylist("user-1", "")); err == nil {
			t.Fatal("expected validation error for empty name")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		record := samplePlaylist("user-1", "Happy Mix")
		record.SetSpotify("sp-1", "spotify:playlist:sp-1", "https://open.spotify.com/playlist/sp-1")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if got.Name() != "Happy Mix" {
			t.Errorf("expected name Happy Mix, got %s", got.Name())
		}
		if got.SpotifyID() != "sp-1" {
			t.Errorf("expected spotify id sp-1, got %s", got.SpotifyID())
		}
		if got.TrackCount() != 3 {
			t.Errorf("expected 3 tracks, got %d", got.TrackCount())
		}
		if len(got.Moods()) != 2 || got.Moods()[0] != "happy" {
			t.Errorf("expected moods round-tripped, got %v", got.Moods())
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		_, err := repo.Get("nonexistent")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		record := samplePlaylist("user-1", "Happy Mix")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		record.SetTrackIDs([]string{"t1", "t2", "t3", "t4"})
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.TrackCount() != 4 {
			t.Errorf("expected 4 tracks after update, got %d", got.TrackCount())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		record := samplePlaylist("user-1", "Happy Mix")

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		if _, err := repo.Get(record.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected soft-deleted playlist to be invisible, got %v", err)
		}

		if err := repo.Delete(record.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected second delete to report not found, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		for _, spec := range []struct{ user, name string }{
			{"user-1", "Happy Mix"},
			{"user-1", "Chill Mix"},
			{"user-2", "Party Mix"},
		} {
			if err := repo.Create(samplePlaylist(spec.user, spec.name)); err != nil {
				t.Fatalf("failed to create playlist %s: %v", spec.name, err)
			}
		}

		t.Run("All", func(t *testing.T) {
			records, err := repo.List(map[string]any{})
			if err != nil {
				t.Fatalf("failed to list playlists: %v", err)
			}
			if len(records) != 3 {
				t.Errorf("expected 3 playlists, got %d", len(records))
			}
			for i := 1; i < len(records); i++ {
				if records[i].Sequence() <= records[i-1].Sequence() {
					t.Error("expected playlists ordered by sequence")
				}
			}
		})

		t.Run("ByUser", func(t *testing.T) {
			records, err := repo.List(map[string]any{"user_id": "user-1"})
			if err != nil {
				t.Fatalf("failed to list playlists: %v", err)
			}
			if len(records) != 2 {
				t.Errorf("expected 2 playlists for user-1, got %d", len(records))
			}
		})

		t.Run("ExcludesDeleted", func(t *testing.T) {
			records, err := repo.List(map[string]any{"user_id": "user-2"})
			if err != nil {
				t.Fatalf("failed to list playlists: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 playlist for user-2, got %d", len(records))
			}

			if err := repo.Delete(records[0].ID()); err != nil {
				t.Fatalf("failed to delete playlist: %v", err)
			}

			records, err = repo.List(map[string]any{"user_id": "user-2"})
			if err != nil {
				t.Fatalf("failed to list playlists: %v", err)
			}
			if len(records) != 0 {
				t.Errorf("expected deleted playlist excluded, got %d", len(records))
			}
		})
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "playlists")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}
