package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// CredentialRepository persists [models.CredentialRecord] documents keyed by
// the Spotify user id. Each record is self-contained, so operations are
// atomic at the single-row level and no cross-row transactions are needed.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get retrieves the credential record for a user.
//
// Returns an error wrapping [shared.ErrRecordNotFound] when no record exists.
func (r *CredentialRepository) Get(userID string) (*models.CredentialRecord, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at
		FROM credentials
		WHERE user_id = ?
	`

	var rec models.CredentialRecord
	err := r.db.QueryRow(query, userID).Scan(&rec.UserID, &rec.AccessToken, &rec.RefreshToken, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: credential for user %s", shared.ErrRecordNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	return &rec, nil
}

// Set writes the full credential record, inserting or replacing in place.
func (r *CredentialRepository) Set(record *models.CredentialRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO credentials (user_id, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, record.UserID, record.AccessToken, record.RefreshToken, record.ExpiresAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}

	return nil
}

// Update applies the partial fields produced by a token refresh. The refresh
// token column is only touched when the update carries a rotated token.
func (r *CredentialRepository) Update(userID string, update models.CredentialUpdate) error {
	if update.AccessToken == "" {
		return fmt.Errorf("%w: refresh update missing access token", shared.ErrInvalidInput)
	}

	now := time.Now()

	var (
		result sql.Result
		err    error
	)

	if update.RefreshToken != nil {
		query := `
			UPDATE credentials
			SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
			WHERE user_id = ?
		`
		result, err = r.db.Exec(query, update.AccessToken, *update.RefreshToken, update.ExpiresAt, now, userID)
	} else {
		query := `
			UPDATE credentials
			SET access_token = ?, expires_at = ?, updated_at = ?
			WHERE user_id = ?
		`
		result, err = r.db.Exec(query, update.AccessToken, update.ExpiresAt, now, userID)
	}

	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: credential for user %s", shared.ErrRecordNotFound, userID)
	}

	return nil
}
