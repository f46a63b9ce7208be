package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// PlaylistRepository implements [models.Repository] for [models.PlaylistRecord] persistence.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new [PlaylistRepository] with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist record with generated ID and sequence
func (r *PlaylistRepository) Create(record *models.PlaylistRecord) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.SetID(shared.GenerateID())
	record.SetSequence(sequence)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	moodsJSON, err := json.Marshal(record.Moods())
	if err != nil {
		return fmt.Errorf("failed to encode moods: %w", err)
	}
	tracksJSON, err := json.Marshal(record.TrackIDs())
	if err != nil {
		return fmt.Errorf("failed to encode track ids: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, spotify_id, uri, external_url, moods, track_ids, track_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID(), record.Sequence(), record.UserID(), record.Name(),
		record.SpotifyID(), record.URI(), record.ExternalURL(),
		string(moodsJSON), string(tracksJSON), record.TrackCount(),
		record.CreatedAt(), record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist record by ID, excluding soft-deleted records
func (r *PlaylistRepository) Get(id string) (*models.PlaylistRecord, error) {
	query := `
		SELECT id, sequence, user_id, name, spotify_id, uri, external_url, moods, track_ids, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	record, err := scanPlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}

	return record, nil
}

// Update modifies an existing playlist record in the database
func (r *PlaylistRepository) Update(record *models.PlaylistRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	tracksJSON, err := json.Marshal(record.TrackIDs())
	if err != nil {
		return fmt.Errorf("failed to encode track ids: %w", err)
	}

	query := `
		UPDATE playlists
		SET name = ?, spotify_id = ?, uri = ?, external_url = ?, track_ids = ?, track_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, record.Name(), record.SpotifyID(), record.URI(), record.ExternalURL(),
		string(tracksJSON), record.TrackCount(), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, record.ID())
	}

	return nil
}

// Delete soft-deletes a playlist record by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves playlist records matching the given criteria, excluding soft-deleted records
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PlaylistRecord, error) {
	query := `
		SELECT id, sequence, user_id, name, spotify_id, uri, external_url, moods, track_ids, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var records []*models.PlaylistRecord
	for rows.Next() {
		record, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(s scanner) (*models.PlaylistRecord, error) {
	var (
		id          string
		sequence    int
		userID      string
		name        string
		spotifyID   string
		uri         string
		externalURL string
		moodsJSON   string
		tracksJSON  string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &userID, &name, &spotifyID, &uri, &externalURL, &moodsJSON, &tracksJSON, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	var moods, trackIDs []string
	if err := json.Unmarshal([]byte(moodsJSON), &moods); err != nil {
		return nil, fmt.Errorf("failed to decode moods: %w", err)
	}
	if err := json.Unmarshal([]byte(tracksJSON), &trackIDs); err != nil {
		return nil, fmt.Errorf("failed to decode track ids: %w", err)
	}

	record := models.NewPlaylistRecord(sequence, userID, name, moods, trackIDs)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	record.SetSpotify(spotifyID, uri, externalURL)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
