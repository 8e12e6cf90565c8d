// package models defines the data model for the juke request relay
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the relay.
// Implementations include Submission.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Track represents a song resolved from the streaming service.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // Duration in seconds
	URI      string
}

// Device represents a playback device registered under the owner's account.
type Device struct {
	ID     string
	Name   string
	Type   string
	Active bool
}
