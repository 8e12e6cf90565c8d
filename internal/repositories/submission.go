package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/shared"
)

// SubmissionRepository persists visitor submissions for duplicate prevention and insights.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new [SubmissionRepository] with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission with generated ID and sequence
func (r *SubmissionRepository) Create(submission *models.Submission) error {
	sequence, err := NextSequence(r.db, "submissions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	submission.SetID(id)

	if err := submission.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO submissions (id, sequence, query, track_id, title, artist, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, submission.Query(), submission.TrackID(),
		submission.Title(), submission.Artist(), submission.Status(), submission.SubmittedAt())
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Recent retrieves the most recent submissions, newest first.
func (r *SubmissionRepository) Recent(limit int) ([]*models.Submission, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, query, track_id, title, artist, status, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC, sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return submissions, nil
}

// QueuedSince reports whether the given track was successfully queued at or after the cutoff.
func (r *SubmissionRepository) QueuedSince(trackID string, cutoff time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM submissions
			WHERE track_id = ? AND status = ? AND submitted_at >= ?
		)
	`

	var exists bool
	err := r.db.QueryRow(query, trackID, models.SubmissionQueued, cutoff).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate window: %w", err)
	}

	return exists, nil
}

// SimilarQueuedSince reports whether a track with the same title and artist,
// regardless of track ID, was successfully queued at or after the cutoff.
// Catches re-releases and alternate versions of a song the queue just played.
func (r *SubmissionRepository) SimilarQueuedSince(title, artist string, cutoff time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM submissions
			WHERE LOWER(title) = LOWER(?) AND LOWER(artist) = LOWER(?)
			  AND status = ? AND submitted_at >= ?
		)
	`

	var exists bool
	err := r.db.QueryRow(query, title, artist, models.SubmissionQueued, cutoff).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check similar submissions: %w", err)
	}

	return exists, nil
}

// StatusCounts returns the number of submissions per outcome status.
func (r *SubmissionRepository) StatusCounts() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM submissions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// TrackCount pairs a queued track with the number of times it was requested.
type TrackCount struct {
	TrackID string
	Title   string
	Artist  string
	Count   int
}

// TopTracks returns the most requested successfully queued tracks.
func (r *SubmissionRepository) TopTracks(limit int) ([]TrackCount, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT track_id, title, artist, COUNT(*) as requests
		FROM submissions
		WHERE status = ? AND track_id != ''
		GROUP BY track_id
		ORDER BY requests DESC, MAX(submitted_at) DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, models.SubmissionQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackCount
	for rows.Next() {
		var tc TrackCount
		if err := rows.Scan(&tc.TrackID, &tc.Title, &tc.Artist, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan track count: %w", err)
		}
		tracks = append(tracks, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// ArtistCount pairs an artist with the number of queued requests.
type ArtistCount struct {
	Artist string
	Count  int
}

// TopArtists returns the most requested artists among queued submissions.
func (r *SubmissionRepository) TopArtists(limit int) ([]ArtistCount, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT artist, COUNT(*) as requests
		FROM submissions
		WHERE status = ? AND artist != ''
		GROUP BY artist
		ORDER BY requests DESC, MAX(submitted_at) DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, models.SubmissionQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top artists: %w", err)
	}
	defer rows.Close()

	var artists []ArtistCount
	for rows.Next() {
		var ac ArtistCount
		if err := rows.Scan(&ac.Artist, &ac.Count); err != nil {
			return nil, fmt.Errorf("failed to scan artist count: %w", err)
		}
		artists = append(artists, ac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// scanSubmission builds a Submission from a row of the standard column set.
func scanSubmission(rows *sql.Rows) (*models.Submission, error) {
	var (
		id          string
		sequence    int
		rawQuery    string
		trackID     string
		title       string
		artist      string
		status      string
		submittedAt time.Time
	)

	if err := rows.Scan(&id, &sequence, &rawQuery, &trackID, &title, &artist, &status, &submittedAt); err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	track := models.Track{ID: trackID, Title: title, Artist: artist}
	submission := models.NewSubmission(sequence, rawQuery, track, status)
	submission.SetID(id)
	submission.SetSubmittedAt(submittedAt)

	return submission, nil
}
