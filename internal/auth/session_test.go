package auth

import (
	"testing"
	"time"

	"github.com/desertthunder/moodify/internal/models"
)

func TestSessionStore(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		store := NewSessionStore(0)

		sess, err := store.Create()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess.ID == "" {
			t.Fatal("expected a session id")
		}

		got, ok := store.Get(sess.ID)
		if !ok {
			t.Fatal("expected session to be found")
		}
		if got != sess {
			t.Error("get must return the same session instance")
		}
	})

	t.Run("Unknown ID", func(t *testing.T) {
		store := NewSessionStore(0)
		if _, ok := store.Get("nope"); ok {
			t.Error("unknown id must not resolve")
		}
	})

	t.Run("Idle Expiry", func(t *testing.T) {
		store := NewSessionStore(time.Minute)
		clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return clock }

		sess, err := store.Create()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clock = clock.Add(30 * time.Second)
		if _, ok := store.Get(sess.ID); !ok {
			t.Fatal("session should survive within the ttl")
		}

		// The successful get reset the idle timer.
		clock = clock.Add(45 * time.Second)
		if _, ok := store.Get(sess.ID); !ok {
			t.Fatal("get should refresh the idle timer")
		}

		clock = clock.Add(2 * time.Minute)
		if _, ok := store.Get(sess.ID); ok {
			t.Error("idle session should expire")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewSessionStore(0)
		sess, _ := store.Create()
		store.Delete(sess.ID)
		if _, ok := store.Get(sess.ID); ok {
			t.Error("deleted session must not resolve")
		}
	})
}

func TestSessionCredential(t *testing.T) {
	expiry := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &models.CredentialRecord{
		UserID:       "spotify-user",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    expiry,
	}

	t.Run("Adopt And Snapshot", func(t *testing.T) {
		sess := NewSession("sess-1")
		sess.AdoptCredential(record)

		cred := sess.Credential()
		if cred.UserID != "spotify-user" || cred.AccessToken != "access" || cred.RefreshToken != "refresh" {
			t.Errorf("snapshot mismatch: %+v", cred)
		}
		if !cred.ExpiresAt.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, cred.ExpiresAt)
		}
	})

	t.Run("Apply Tokens Retains Refresh Token", func(t *testing.T) {
		sess := NewSession("sess-1")
		sess.AdoptCredential(record)

		sess.ApplyTokens("access-2", expiry.Add(time.Hour), "")
		if cred := sess.Credential(); cred.RefreshToken != "refresh" {
			t.Error("empty refresh token must retain the previous one")
		}

		sess.ApplyTokens("access-3", expiry.Add(2*time.Hour), "refresh-2")
		if cred := sess.Credential(); cred.RefreshToken != "refresh-2" {
			t.Error("non-empty refresh token must rotate")
		}
	})

	t.Run("Clear Keeps User", func(t *testing.T) {
		sess := NewSession("sess-1")
		sess.AdoptCredential(record)
		sess.ClearCredential()

		cred := sess.Credential()
		if cred.AccessToken != "" || cred.RefreshToken != "" {
			t.Error("tokens must be dropped")
		}
		if cred.UserID != "spotify-user" {
			t.Error("user id must survive a credential clear")
		}
	})
}
