package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
	mocks "github.com/desertthunder/moodify/internal/testing"
)

type stubEngine struct {
	GenerateFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate, sess *auth.Session, opts tasks.GenerateOpts) (*tasks.GenerateResult, error)
}

func (s *stubEngine) Generate(ctx context.Context, progress chan<- tasks.ProgressUpdate, sess *auth.Session, opts tasks.GenerateOpts) (*tasks.GenerateResult, error) {
	if s.GenerateFunc == nil {
		return &tasks.GenerateResult{
			Playlist:   &services.Playlist{ID: "sp-1", Name: "Mix", ExternalURL: "https://open.spotify.com/playlist/sp-1"},
			TrackCount: 2,
			SeedCount:  3,
		}, nil
	}
	return s.GenerateFunc(ctx, progress, sess, opts)
}

func (s *stubEngine) Export(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.ExportOpts) (*tasks.ExportResult, error) {
	return &tasks.ExportResult{}, nil
}

type stubHealth struct{ err error }

func (s stubHealth) Health(ctx context.Context) error { return s.err }

type stubPlaylists struct {
	records []*models.PlaylistRecord
	err     error
}

func (s *stubPlaylists) Create(record *models.PlaylistRecord) error { return nil }

func (s *stubPlaylists) List(criteria map[string]any) ([]*models.PlaylistRecord, error) {
	return s.records, s.err
}

type testApp struct {
	router  *BasicRouter
	manager *auth.Manager
	store   *mocks.MemoryCredentialStore
}

func newTestApp(t *testing.T, engine tasks.MixEngine, playlists tasks.PlaylistStore, health HealthChecker) *testApp {
	t.Helper()

	authorizer := &mocks.MockAuthorizer{
		ExchangeFunc: func(ctx context.Context, code, verifier string) (*services.TokenSet, error) {
			if code != "good-code" {
				return nil, fmt.Errorf("%w: bad code", shared.ErrUpstreamAuth)
			}
			return &services.TokenSet{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresAt:    time.Now().Add(time.Hour),
			}, nil
		},
	}
	store := mocks.NewMemoryCredentialStore()
	manager := auth.NewManager(auth.ManagerOpts{
		Authorizer: authorizer,
		Music:      &mocks.MockMusicService{},
		Store:      store,
	})

	logger := shared.NewLogger(nil)
	router := NewBasicRouter()
	router.Use(WithSessions(auth.NewSessionStore(0), logger))
	NewAPI(manager, engine, playlists, health, logger).Mount(router)

	return &testApp{router: router, manager: manager, store: store}
}

// do issues a request with an optional session cookie and returns the recorder.
func (app *testApp) do(method, target, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c.Value
		}
	}
	return ""
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("Recommender Up", func(t *testing.T) {
		app := newTestApp(t, &stubEngine{}, nil, stubHealth{})
		rec := app.do(http.MethodGet, "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"recommender":"ok"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("Recommender Down", func(t *testing.T) {
		app := newTestApp(t, &stubEngine{}, nil, stubHealth{err: shared.ErrServiceUnavailable})
		rec := app.do(http.MethodGet, "/health", "")
		if !strings.Contains(rec.Body.String(), `"recommender":"unavailable"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestMoodEndpoints(t *testing.T) {
	app := newTestApp(t, &stubEngine{}, nil, nil)

	t.Run("List", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/moods", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Moods []string `json:"moods"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(body.Moods) != 6 {
			t.Errorf("expected six moods, got %v", body.Moods)
		}
	})

	t.Run("Preview", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/moods/preview?moods=happy,party", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Filters map[string]struct {
				Min    float64 `json:"min"`
				Max    float64 `json:"max"`
				Target float64 `json:"target"`
			} `json:"filters"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if _, ok := body.Filters["danceability"]; !ok {
			t.Errorf("expected danceability filter, got %v", body.Filters)
		}
	})

	t.Run("Preview Without Moods", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/moods/preview", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		rec := app.do(http.MethodDelete, "/moods", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t, &stubEngine{}, nil, nil)

	login := app.do(http.MethodGet, "/auth/login", "")
	if login.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", login.Code)
	}
	cookie := sessionCookie(login)
	if cookie == "" {
		t.Fatal("expected a session cookie")
	}

	location, err := url.Parse(login.Header().Get("Location"))
	if err != nil {
		t.Fatalf("invalid redirect location: %v", err)
	}
	state := location.Query().Get("state")
	if state == "" {
		t.Fatal("expected state in authorization URL")
	}

	t.Run("Callback Bad State", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/auth/callback?state=wrong&code=good-code", cookie)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Callback Success", func(t *testing.T) {
		rec := app.do(http.MethodGet, fmt.Sprintf("/auth/callback?state=%s&code=good-code", state), cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"user_id":"mock-user"`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if _, ok := app.store.Records["mock-user"]; !ok {
			t.Error("expected credential persisted after callback")
		}
	})

	t.Run("Callback Replay", func(t *testing.T) {
		// The verifier was consumed by the successful exchange.
		rec := app.do(http.MethodGet, fmt.Sprintf("/auth/callback?state=%s&code=good-code", state), cookie)
		if rec.Code == http.StatusOK {
			t.Error("replayed callback must not succeed")
		}
	})
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotOpts tasks.GenerateOpts
		engine := &stubEngine{
			GenerateFunc: func(ctx context.Context, progress chan<- tasks.ProgressUpdate, sess *auth.Session, opts tasks.GenerateOpts) (*tasks.GenerateResult, error) {
				gotOpts = opts
				return &tasks.GenerateResult{
					Playlist:   &services.Playlist{ID: "sp-1", Name: "Happy + Party Mix"},
					TrackCount: 5,
					SeedCount:  10,
				}, nil
			},
		}
		app := newTestApp(t, engine, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(`{"moods":["happy","party"],"seed_limit":10}`))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(gotOpts.Moods) != 2 || gotOpts.SeedLimit != 10 {
			t.Errorf("options not forwarded: %+v", gotOpts)
		}
		if !strings.Contains(rec.Body.String(), `"track_count":5`) {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		engine := &stubEngine{
			GenerateFunc: func(ctx context.Context, progress chan<- tasks.ProgressUpdate, sess *auth.Session, opts tasks.GenerateOpts) (*tasks.GenerateResult, error) {
				return nil, fmt.Errorf("%w: no refresh token", shared.ErrNotAuthenticated)
			},
		}
		app := newTestApp(t, engine, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(`{"moods":["chill"]}`))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Bad Body", func(t *testing.T) {
		app := newTestApp(t, &stubEngine{}, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestListEndpoint(t *testing.T) {
	record := models.NewPlaylistRecord(1, "spotify-user", "Chill Mix", []string{"chill"}, []string{"t1"})
	record.SetID("pl-1")
	app := newTestApp(t, &stubEngine{}, &stubPlaylists{records: []*models.PlaylistRecord{record}}, nil)

	rec := app.do(http.MethodGet, "/playlists", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"Chill Mix"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestCallbackHandler(t *testing.T) {
	newHandler := func(t *testing.T) (*CallbackHandler, *auth.Session, string) {
		t.Helper()
		authorizer := &mocks.MockAuthorizer{
			ExchangeFunc: func(ctx context.Context, code, verifier string) (*services.TokenSet, error) {
				return &services.TokenSet{
					AccessToken:  "access",
					RefreshToken: "refresh",
					ExpiresAt:    time.Now().Add(time.Hour),
				}, nil
			},
		}
		manager := auth.NewManager(auth.ManagerOpts{
			Authorizer: authorizer,
			Music:      &mocks.MockMusicService{},
			Store:      mocks.NewMemoryCredentialStore(),
		})
		sess := auth.NewSession("cli")
		if _, err := manager.InitiateLogin(sess); err != nil {
			t.Fatalf("initiate login failed: %v", err)
		}
		return NewCallbackHandler(manager, sess), sess, sess.State()
	}

	t.Run("Success Delivers Result", func(t *testing.T) {
		handler, _, state := newHandler(t)

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/auth/callback?state=%s&code=abc", state), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected success, got %v", result.Error())
		}
		if result.Record == nil || result.Record.UserID != "mock-user" {
			t.Errorf("unexpected record: %+v", result.Record)
		}
	})

	t.Run("Bad State", func(t *testing.T) {
		handler, _, _ := newHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=wrong&code=abc", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-handler.Result(); result.Error() == nil {
			t.Error("expected error result")
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		handler, _, state := newHandler(t)

		first := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/auth/callback?state=%s&code=abc", state), nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/auth/callback?state=%s&code=abc", state), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replayed callback, got %d", rec.Code)
		}
	})
}

func TestSessionMiddleware(t *testing.T) {
	store := auth.NewSessionStore(0)
	logger := shared.NewLogger(nil)

	var seen []*auth.Session
	handler := WithSessions(store, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		if !ok {
			t.Error("expected a session in context")
		}
		seen = append(seen, sess)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(first)
	if cookie == "" {
		t.Fatal("expected a session cookie on first request")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Error("expected the same session across requests with the cookie")
	}
}
