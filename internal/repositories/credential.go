package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/shared"
)

// CredentialRepository persists the single stored [models.Credential].
//
// The credentials table is pinned to one row; Save replaces it wholesale so
// concurrent writers can never leave a half-updated token pair behind.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get retrieves the stored credential.
// Returns [shared.ErrNotAuthenticated] when no credential exists.
func (r *CredentialRepository) Get() (*models.Credential, error) {
	query := `
		SELECT access_token, refresh_token, expires_at FROM credentials WHERE id = 1
	`

	var (
		accessToken  string
		refreshToken sql.NullString
		expiresAt    sql.NullTime
	)

	err := r.db.QueryRow(query).Scan(&accessToken, &refreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	cred := &models.Credential{AccessToken: accessToken}
	if refreshToken.Valid {
		cred.RefreshToken = refreshToken.String
	}
	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}

	return cred, nil
}

// Save atomically replaces the stored credential.
func (r *CredentialRepository) Save(cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidCredentials)
	}

	query := `
		INSERT INTO credentials (id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	var refreshToken any
	if cred.RefreshToken != "" {
		refreshToken = cred.RefreshToken
	}

	var expiresAt any
	if !cred.ExpiresAt.IsZero() {
		expiresAt = cred.ExpiresAt
	}

	if _, err := r.db.Exec(query, cred.AccessToken, refreshToken, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Clear removes the stored credential.
func (r *CredentialRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
