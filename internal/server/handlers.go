package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/moods"
	"github.com/desertthunder/moodify/internal/shared"
	"github.com/desertthunder/moodify/internal/tasks"
)

// HealthChecker reports reachability of a collaborator service.
// Satisfied by services.RecommenderService.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// API bundles the web service handlers: login, mood previews, playlist
// generation, and history.
type API struct {
	manager     *auth.Manager
	engine      tasks.MixEngine
	playlists   tasks.PlaylistStore
	recommender HealthChecker
	logger      *log.Logger
}

// NewAPI creates the web handler set. The recommender health checker and
// playlist store may be nil; the corresponding endpoints degrade gracefully.
func NewAPI(manager *auth.Manager, engine tasks.MixEngine, playlists tasks.PlaylistStore, recommender HealthChecker, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		manager:     manager,
		engine:      engine,
		playlists:   playlists,
		recommender: recommender,
		logger:      logger,
	}
}

// Mount registers all API routes on the router.
func (a *API) Mount(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.handleHealth))
	r.Handle(http.MethodGet, "/moods", http.HandlerFunc(a.handleMoods))
	r.Handle(http.MethodGet, "/moods/preview", http.HandlerFunc(a.handleMoodPreview))
	r.Handle(http.MethodGet, "/auth/login", http.HandlerFunc(a.handleLogin))
	r.Handle(http.MethodGet, "/auth/callback", http.HandlerFunc(a.handleCallback))
	r.Handle(http.MethodPost, "/playlists", http.HandlerFunc(a.handleGenerate))
	r.Handle(http.MethodGet, "/playlists", http.HandlerFunc(a.handleList))
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "recommender": "unknown"}
	if a.recommender != nil {
		if err := a.recommender.Health(r.Context()); err != nil {
			status["recommender"] = "unavailable"
		} else {
			status["recommender"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) handleMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"moods": moods.Names()})
}

// handleMoodPreview composes filters for ?moods=a,b without touching Spotify.
func (a *API) handleMoodPreview(w http.ResponseWriter, r *http.Request) {
	names := splitMoods(r.URL.Query().Get("moods"))
	if len(names) == 0 {
		writeError(w, http.StatusBadRequest, "moods query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moods":   names,
		"filters": moods.Compose(names),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	url, err := a.manager.InitiateLogin(sess)
	if err != nil {
		a.logger.Error("failed to initiate login", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start login")
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	if state := r.URL.Query().Get("state"); state == "" || state != sess.State() {
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "authorization failed: "+r.URL.Query().Get("error"))
		return
	}

	record, err := a.manager.CompleteLogin(r.Context(), sess, code)
	if err != nil {
		a.logger.Error("login failed", "error", err)
		writeError(w, statusFor(err), "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"user_id": record.UserID})
}

type generateRequest struct {
	Moods       []string `json:"moods"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	SeedLimit   int      `json:"seed_limit,omitempty"`
}

type generateResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ExternalURL string        `json:"external_url,omitempty"`
	TrackCount  int           `json:"track_count"`
	SeedCount   int           `json:"seed_count"`
	Filters     moods.Filters `json:"filters"`
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := a.engine.Generate(r.Context(), nil, sess, tasks.GenerateOpts{
		Moods:       req.Moods,
		Name:        req.Name,
		Description: req.Description,
		SeedLimit:   req.SeedLimit,
	})
	if err != nil {
		a.logger.Error("playlist generation failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		ID:          result.Playlist.ID,
		Name:        result.Playlist.Name,
		ExternalURL: result.Playlist.ExternalURL,
		TrackCount:  result.TrackCount,
		SeedCount:   result.SeedCount,
		Filters:     result.Filters,
	})
}

type playlistItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Moods       []string `json:"moods"`
	TrackCount  int      `json:"track_count"`
	ExternalURL string   `json:"external_url,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
		return
	}
	if a.playlists == nil {
		writeJSON(w, http.StatusOK, map[string]any{"playlists": []playlistItem{}})
		return
	}

	criteria := map[string]any{}
	if userID := sess.UserID(); userID != "" {
		criteria["user_id"] = userID
	}

	records, err := a.playlists.List(criteria)
	if err != nil {
		a.logger.Error("failed to list playlists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list playlists")
		return
	}

	items := make([]playlistItem, 0, len(records))
	for _, record := range records {
		items = append(items, itemOf(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": items})
}

func itemOf(record *models.PlaylistRecord) playlistItem {
	return playlistItem{
		ID:          record.ID(),
		Name:        record.Name(),
		Moods:       record.Moods(),
		TrackCount:  record.TrackCount(),
		ExternalURL: record.ExternalURL(),
		CreatedAt:   record.CreatedAt().Format(time.RFC3339),
	}
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrUpstreamAuth):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrHandshakeState), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrRefreshUnavailable), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func splitMoods(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
