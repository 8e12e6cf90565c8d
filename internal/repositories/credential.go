package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/shared"
)

// CredentialRepository persists the queue owner's single credential row.
//
// The table holds at most one row (id = 1). Save overwrites it in place so the
// store never accumulates stale token pairs.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get retrieves the stored owner credential.
//
// Returns [shared.ErrNotAuthenticated] when no credential has ever been stored.
func (r *CredentialRepository) Get() (*models.Credential, error) {
	query := `
		SELECT access_token, refresh_token, scope, expires_at, updated_at
		FROM credentials
		WHERE id = 1
	`

	var (
		accessToken  string
		refreshToken string
		scope        string
		expiresAt    time.Time
		updatedAt    time.Time
	)

	err := r.db.QueryRow(query).Scan(&accessToken, &refreshToken, &scope, &expiresAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	credential := models.NewCredential(accessToken, refreshToken, scope, expiresAt)
	credential.SetUpdatedAt(updatedAt)

	return credential, nil
}

// Save stores the credential, overwriting any existing row.
func (r *CredentialRepository) Save(credential *models.Credential) error {
	if err := credential.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	credential.SetUpdatedAt(now)

	query := `
		INSERT INTO credentials (id, access_token, refresh_token, scope, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scope = excluded.scope,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, credential.AccessToken(), credential.RefreshToken(), credential.Scope(), credential.ExpiresAt(), now)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Clear removes the stored credential.
//
// Called when a refresh token is revoked so the owner is prompted to log in again.
func (r *CredentialRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM credentials WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
