package models

import (
	"fmt"
	"time"
)

// Credential holds the queue owner's OAuth token pair.
//
// There is at most one live credential per process. The auth manager overwrites
// it on every refresh; an expired credential must never be used as-is.
type Credential struct {
	accessToken  string
	refreshToken string
	scope        string
	expiresAt    time.Time
	updatedAt    time.Time
}

// NewCredential creates a Credential from token exchange or refresh output.
func NewCredential(accessToken, refreshToken, scope string, expiresAt time.Time) *Credential {
	return &Credential{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		scope:        scope,
		expiresAt:    expiresAt,
		updatedAt:    time.Now(),
	}
}

func (c *Credential) AccessToken() string  { return c.accessToken }
func (c *Credential) RefreshToken() string { return c.refreshToken }
func (c *Credential) Scope() string        { return c.scope }
func (c *Credential) ExpiresAt() time.Time { return c.expiresAt }
func (c *Credential) UpdatedAt() time.Time { return c.updatedAt }

// SetUpdatedAt sets the last-modified timestamp (used when loading from storage).
func (c *Credential) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// Expired reports whether the access token is expired or will expire within leeway.
func (c *Credential) Expired(leeway time.Duration) bool {
	return time.Now().Add(leeway).After(c.expiresAt)
}

// Validate checks that the credential carries both tokens and an expiry.
func (c *Credential) Validate() error {
	if c.accessToken == "" {
		return fmt.Errorf("credential missing access token")
	}
	if c.refreshToken == "" {
		return fmt.Errorf("credential missing refresh token")
	}
	if c.expiresAt.IsZero() {
		return fmt.Errorf("credential missing expiry")
	}
	return nil
}
