// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/moods"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
)

// MockAuthorizer is a test double for [services.Authorizer] with injectable
// behavior and call counting.
type MockAuthorizer struct {
	ExchangeFunc func(ctx context.Context, code, verifier string) (*services.TokenSet, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (*services.TokenSet, error)

	mu            sync.Mutex
	ExchangeCalls int
	RefreshCalls  int
}

func (m *MockAuthorizer) AuthCodeURL(state, verifier string) string {
	return fmt.Sprintf("https://accounts.example.com/authorize?state=%s&code_challenge=%s", state, verifier)
}

func (m *MockAuthorizer) Exchange(ctx context.Context, code, verifier string) (*services.TokenSet, error) {
	m.mu.Lock()
	m.ExchangeCalls++
	m.mu.Unlock()
	if m.ExchangeFunc == nil {
		return nil, errors.New("no exchange behavior configured")
	}
	return m.ExchangeFunc(ctx, code, verifier)
}

func (m *MockAuthorizer) Refresh(ctx context.Context, refreshToken string) (*services.TokenSet, error) {
	m.mu.Lock()
	m.RefreshCalls++
	m.mu.Unlock()
	if m.RefreshFunc == nil {
		return nil, errors.New("no refresh behavior configured")
	}
	return m.RefreshFunc(ctx, refreshToken)
}

// Refreshes returns the refresh call count.
func (m *MockAuthorizer) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefreshCalls
}

// MockMusicService is a test double for [services.MusicService].
type MockMusicService struct {
	ProfileFunc        func(ctx context.Context, accessToken string) (*services.UserProfile, error)
	SeedTrackIDsFunc   func(ctx context.Context, accessToken string, limit int) ([]string, error)
	CreatePlaylistFunc func(ctx context.Context, accessToken, userID, name, description string) (*services.Playlist, error)
	AddTracksFunc      func(ctx context.Context, accessToken, playlistID string, trackIDs []string) error
}

func (m *MockMusicService) Profile(ctx context.Context, accessToken string) (*services.UserProfile, error) {
	if m.ProfileFunc == nil {
		return &services.UserProfile{ID: "mock-user"}, nil
	}
	return m.ProfileFunc(ctx, accessToken)
}

func (m *MockMusicService) SeedTrackIDs(ctx context.Context, accessToken string, limit int) ([]string, error) {
	if m.SeedTrackIDsFunc == nil {
		return []string{"seed1", "seed2"}, nil
	}
	return m.SeedTrackIDsFunc(ctx, accessToken, limit)
}

func (m *MockMusicService) CreatePlaylist(ctx context.Context, accessToken, userID, name, description string) (*services.Playlist, error) {
	if m.CreatePlaylistFunc == nil {
		return &services.Playlist{ID: "mock-playlist", Name: name}, nil
	}
	return m.CreatePlaylistFunc(ctx, accessToken, userID, name, description)
}

func (m *MockMusicService) AddTracks(ctx context.Context, accessToken, playlistID string, trackIDs []string) error {
	if m.AddTracksFunc == nil {
		return nil
	}
	return m.AddTracksFunc(ctx, accessToken, playlistID, trackIDs)
}

func (m *MockMusicService) Name() string { return "mock" }

// MockRecommender is a test double for [services.Recommender].
type MockRecommender struct {
	RecommendFunc func(ctx context.Context, trackIDs []string, filters moods.Filters) ([]string, error)
}

func (m *MockRecommender) Recommend(ctx context.Context, trackIDs []string, filters moods.Filters) ([]string, error) {
	if m.RecommendFunc == nil {
		return []string{"rec1", "rec2", "rec3"}, nil
	}
	return m.RecommendFunc(ctx, trackIDs, filters)
}

// MemoryCredentialStore is an in-memory [auth.CredentialStore] with
// injectable failures for exercising degraded-store paths.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	Records map[string]models.CredentialRecord

	FailGet    error
	FailSet    error
	FailUpdate error

	GetCalls    int
	SetCalls    int
	UpdateCalls int
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{Records: make(map[string]models.CredentialRecord)}
}

func (s *MemoryCredentialStore) Get(userID string) (*models.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++

	if s.FailGet != nil {
		return nil, s.FailGet
	}
	rec, ok := s.Records[userID]
	if !ok {
		return nil, fmt.Errorf("%w: credential for user %s", shared.ErrRecordNotFound, userID)
	}
	copied := rec
	return &copied, nil
}

func (s *MemoryCredentialStore) Set(record *models.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++

	if s.FailSet != nil {
		return s.FailSet
	}
	if err := record.Validate(); err != nil {
		return err
	}
	s.Records[record.UserID] = *record
	return nil
}

func (s *MemoryCredentialStore) Update(userID string, update models.CredentialUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++

	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	rec, ok := s.Records[userID]
	if !ok {
		return fmt.Errorf("%w: credential for user %s", shared.ErrRecordNotFound, userID)
	}
	rec.AccessToken = update.AccessToken
	rec.ExpiresAt = update.ExpiresAt
	if update.RefreshToken != nil {
		rec.RefreshToken = *update.RefreshToken
	}
	s.Records[userID] = rec
	return nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
