// package services defines interface Service for interacting with the streaming API
package services

import (
	"context"

	"github.com/desertthunder/juke/internal/models"
)

// TokenSource supplies a valid owner access token for API calls.
//
// Token returns the cached token, refreshing it first when expired. Refresh
// forces a new access token regardless of the cached expiry; it backs the
// single retry after an upstream 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Service defines the interface for the streaming provider receiving relayed submissions.
type Service interface {
	// SearchTrack resolves free-text input to the top-ranked track.
	// Returns an error wrapping shared.ErrTrackNotFound when nothing matches.
	SearchTrack(ctx context.Context, query string) (*models.Track, error)

	// GetTrack retrieves a single track by its service identifier.
	GetTrack(ctx context.Context, trackID string) (*models.Track, error)

	// QueueTrack appends a track URI to the owner's active playback queue.
	// Returns an error wrapping shared.ErrNoActiveDevice when nothing is playing.
	QueueTrack(ctx context.Context, trackURI string) error

	// Recommendations returns up to limit tracks similar to the seed track,
	// suggested back to the visitor alongside the submission outcome.
	Recommendations(ctx context.Context, seedTrackID string, limit int) ([]models.Track, error)

	// Devices lists playback devices registered under the owner's account.
	Devices(ctx context.Context) ([]models.Device, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
