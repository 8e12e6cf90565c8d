package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/repositories"
	"github.com/desertthunder/juke/internal/services"
	"github.com/desertthunder/juke/internal/shared"
)

// Track link shapes accepted as direct submissions.
var trackLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://open\.spotify\.com/track/([a-zA-Z0-9]+)`),
	regexp.MustCompile(`spotify:track:([a-zA-Z0-9]+)`),
}

// ExtractTrackID extracts a track identifier from a share link or URI.
//
// Format validation only; no network call is made.
func ExtractTrackID(input string) (string, bool) {
	for _, pattern := range trackLinkPatterns {
		if match := pattern.FindStringSubmatch(input); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// SubmissionRecorder persists submission outcomes. Implemented by repositories.SubmissionRepository.
type SubmissionRecorder interface {
	Create(submission *models.Submission) error
	QueuedSince(trackID string, cutoff time.Time) (bool, error)
	SimilarQueuedSince(title, artist string, cutoff time.Time) (bool, error)
	StatusCounts() (map[string]int, error)
	TopTracks(limit int) ([]repositories.TrackCount, error)
	TopArtists(limit int) ([]repositories.ArtistCount, error)
}

// recommendationLimit caps the similar-track suggestions shown to a visitor.
const recommendationLimit = 3

// RelayEngine mediates between anonymous submitters and the owner's queue.
type RelayEngine struct {
	service         services.Service
	submissions     SubmissionRecorder
	logger          *log.Logger
	duplicateWindow time.Duration
}

// RelayOpts contains configuration for creating a RelayEngine.
type RelayOpts struct {
	Service         services.Service
	Submissions     SubmissionRecorder
	Logger          *log.Logger
	DuplicateWindow time.Duration
}

// NewRelayEngine creates a RelayEngine with the provided dependencies.
func NewRelayEngine(opts RelayOpts) *RelayEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &RelayEngine{
		service:         opts.Service,
		submissions:     opts.Submissions,
		logger:          opts.Logger,
		duplicateWindow: opts.DuplicateWindow,
	}
}

// SubmitResult describes the outcome of a relayed submission.
type SubmitResult struct {
	Track           models.Track
	Resolved        string // "link" or "search"
	Recommendations []models.Track
}

// Submit resolves one raw visitor input and appends the track to the owner's queue.
//
// Empty input fails with ErrInvalidInput before any external call. Link inputs
// are resolved by ID extraction (one track lookup); anything else issues
// exactly one search call and takes the top-ranked result. Successful enqueues
// and duplicate rejections both return a result carrying similar-track
// suggestions for the visitor; for a duplicate the error is still non-nil.
func (e *RelayEngine) Submit(ctx context.Context, raw string) (*SubmitResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: streaming service not initialized", shared.ErrServiceUnavailable)
	}

	query := strings.TrimSpace(raw)
	if query == "" {
		return nil, fmt.Errorf("%w: submission is empty", shared.ErrInvalidInput)
	}

	var (
		track    *models.Track
		resolved string
		err      error
	)

	if id, ok := ExtractTrackID(query); ok {
		resolved = "link"
		track, err = e.service.GetTrack(ctx, id)
	} else {
		resolved = "search"
		track, err = e.service.SearchTrack(ctx, query)
	}
	if err != nil {
		e.record(query, models.Track{}, models.SubmissionRejected)
		return nil, err
	}

	if dupErr := e.checkDuplicate(track); dupErr != nil {
		e.record(query, *track, models.SubmissionRejected)
		result := &SubmitResult{Track: *track, Resolved: resolved, Recommendations: e.recommend(ctx, track)}
		return result, dupErr
	}

	if err := e.service.QueueTrack(ctx, track.URI); err != nil {
		e.record(query, *track, models.SubmissionFailed)
		return nil, err
	}

	e.record(query, *track, models.SubmissionQueued)
	e.logger.Info("track queued", "track", track.Title, "artist", track.Artist, "via", resolved)

	return &SubmitResult{Track: *track, Resolved: resolved, Recommendations: e.recommend(ctx, track)}, nil
}

// checkDuplicate rejects a track already queued inside the duplicate window,
// either the exact track or an alternate version sharing title and artist.
// Check failures only log; a broken duplicate store should not block the queue.
func (e *RelayEngine) checkDuplicate(track *models.Track) error {
	if e.duplicateWindow <= 0 || e.submissions == nil {
		return nil
	}

	cutoff := time.Now().Add(-e.duplicateWindow)

	duplicate, err := e.submissions.QueuedSince(track.ID, cutoff)
	if err != nil {
		e.logger.Error("duplicate check failed", "err", err)
		return nil
	}
	if duplicate {
		return fmt.Errorf("%w: %q was queued in the last %s", shared.ErrDuplicateTrack, track.Title, e.duplicateWindow)
	}

	similar, err := e.submissions.SimilarQueuedSince(track.Title, track.Artist, cutoff)
	if err != nil {
		e.logger.Error("similar-track check failed", "err", err)
		return nil
	}
	if similar {
		return fmt.Errorf("%w: a version of %q by %s was queued in the last %s",
			shared.ErrDuplicateTrack, track.Title, track.Artist, e.duplicateWindow)
	}

	return nil
}

// recommend fetches similar-track suggestions seeded by the resolved track,
// dropping the seed itself and anything queued inside the duplicate window.
// Suggestions are best effort and never change the submission outcome.
func (e *RelayEngine) recommend(ctx context.Context, seed *models.Track) []models.Track {
	found, err := e.service.Recommendations(ctx, seed.ID, recommendationLimit*2)
	if err != nil {
		e.logger.Debug("recommendations unavailable", "err", err)
		return nil
	}

	var cutoff time.Time
	if e.duplicateWindow > 0 {
		cutoff = time.Now().Add(-e.duplicateWindow)
	}

	recommendations := make([]models.Track, 0, recommendationLimit)
	for _, track := range found {
		if track.ID == seed.ID {
			continue
		}

		if e.duplicateWindow > 0 && e.submissions != nil {
			queued, err := e.submissions.QueuedSince(track.ID, cutoff)
			if err == nil && queued {
				continue
			}
		}

		recommendations = append(recommendations, track)
		if len(recommendations) == recommendationLimit {
			break
		}
	}

	return recommendations
}

// record persists a submission outcome. Persistence failures are logged, not
// surfaced: the visitor already has a definitive answer by this point.
func (e *RelayEngine) record(query string, track models.Track, status string) {
	if e.submissions == nil {
		return
	}

	submission := models.NewSubmission(0, query, track, status)
	if err := e.submissions.Create(submission); err != nil {
		e.logger.Error("failed to record submission", "err", err)
	}
}

// Insights summarizes submission history for the dashboard and CLI.
type Insights struct {
	Total      int
	Queued     int
	Rejected   int
	Failed     int
	TopTracks  []repositories.TrackCount
	TopArtists []repositories.ArtistCount
}

// Insights aggregates submission counts and the most requested tracks and artists.
func (e *RelayEngine) Insights() (*Insights, error) {
	if e.submissions == nil {
		return nil, fmt.Errorf("%w: submission store not initialized", shared.ErrServiceUnavailable)
	}

	counts, err := e.submissions.StatusCounts()
	if err != nil {
		return nil, err
	}

	topTracks, err := e.submissions.TopTracks(5)
	if err != nil {
		return nil, err
	}

	topArtists, err := e.submissions.TopArtists(5)
	if err != nil {
		return nil, err
	}

	insights := &Insights{
		Queued:     counts[models.SubmissionQueued],
		Rejected:   counts[models.SubmissionRejected],
		Failed:     counts[models.SubmissionFailed],
		TopTracks:  topTracks,
		TopArtists: topArtists,
	}
	insights.Total = insights.Queued + insights.Rejected + insights.Failed

	return insights, nil
}
