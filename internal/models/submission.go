package models

import (
	"fmt"
	"time"
)

// Submission outcome statuses.
const (
	SubmissionQueued   = "queued"   // track resolved and appended to the owner's queue
	SubmissionRejected = "rejected" // rejected before enqueue (duplicate, not found, bad input)
	SubmissionFailed   = "failed"   // enqueue attempted but refused upstream
)

// Submission records one visitor request and its outcome.
type Submission struct {
	id          string
	sequence    int
	query       string
	trackID     string
	title       string
	artist      string
	status      string
	submittedAt time.Time
}

// NewSubmission creates a Submission for the given raw query and resolved track.
// Track fields may be empty when resolution failed.
func NewSubmission(sequence int, query string, track Track, status string) *Submission {
	return &Submission{
		sequence:    sequence,
		query:       query,
		trackID:     track.ID,
		title:       track.Title,
		artist:      track.Artist,
		status:      status,
		submittedAt: time.Now(),
	}
}

func (s *Submission) ID() string             { return s.id }
func (s *Submission) Sequence() int          { return s.sequence }
func (s *Submission) Query() string          { return s.query }
func (s *Submission) TrackID() string        { return s.trackID }
func (s *Submission) Title() string          { return s.title }
func (s *Submission) Artist() string         { return s.artist }
func (s *Submission) Status() string         { return s.status }
func (s *Submission) CreatedAt() time.Time   { return s.submittedAt }
func (s *Submission) UpdatedAt() time.Time   { return s.submittedAt }
func (s *Submission) SubmittedAt() time.Time { return s.submittedAt }

// SetID assigns the unique identifier (used by the repository on insert).
func (s *Submission) SetID(id string) { s.id = id }

// SetSubmittedAt sets the submission timestamp (used when loading from storage).
func (s *Submission) SetSubmittedAt(t time.Time) { s.submittedAt = t }

// Validate checks the submission fields before persistence.
func (s *Submission) Validate() error {
	if s.query == "" {
		return fmt.Errorf("submission missing query")
	}
	switch s.status {
	case SubmissionQueued, SubmissionRejected, SubmissionFailed:
	default:
		return fmt.Errorf("invalid submission status: %s", s.status)
	}
	return nil
}
