// Client for the recommendation microservice
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/moodify/internal/moods"
	"github.com/desertthunder/moodify/internal/shared"
)

// RecommenderService calls the external recommendation microservice. The
// engine itself (embeddings, nearest-neighbor search, filter relaxation) is a
// black box; this client only speaks its wire shapes.
type RecommenderService struct {
	baseURL    string
	httpClient *http.Client
}

// NewRecommenderService creates a client for the recommendation service.
func NewRecommenderService(baseURL string, client *http.Client) *RecommenderService {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RecommenderService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// recommendationRequest is the request body: seed track ids plus the
// composite mood filter range per audio feature.
type recommendationRequest struct {
	TrackIDs    []string      `json:"track_ids"`
	MoodFilters moods.Filters `json:"mood_filters"`
}

// recommendationResponse is the response body: one ordered track-id list.
type recommendationResponse struct {
	Set1 []string `json:"set_1"`
}

// Recommend posts the seeds and filters and returns the recommended track ids.
func (r *RecommenderService) Recommend(ctx context.Context, trackIDs []string, filters moods.Filters) ([]string, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no seed track IDs", shared.ErrInvalidInput)
	}

	payload, err := json.Marshal(recommendationRequest{TrackIDs: trackIDs, MoodFilters: filters})
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/recommendations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: recommender: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: recommender status %d: %s", shared.ErrServiceUnavailable, resp.StatusCode, body)
	}

	var decoded recommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation response: %w", err)
	}

	return decoded.Set1, nil
}

// Health checks whether the recommendation service is reachable.
func (r *RecommenderService) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: recommender: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: recommender status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	return nil
}
