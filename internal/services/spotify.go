// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Queue operations require playback scopes on the owner's account.
var spotifyScopes = []string{
	"user-modify-playback-state",
	"user-read-playback-state",
}

// NewOAuthConfig builds the OAuth2 config for the Spotify authorization-code flow.
func NewOAuthConfig(credentials map[string]string) (*oauth2.Config, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials")
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials")
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8888/callback"
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}, nil
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyDevice represents a playback device under the owner's account.
type SpotifyDevice struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// spotifyError is the error envelope returned by the Web API.
type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
// Requests are authenticated with bearer tokens from the injected [TokenSource].
type SpotifyService struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service using the given token source.
func NewSpotifyService(tokens TokenSource, client *http.Client) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyService{
		tokens:     tokens,
		httpClient: client,
		baseURL:    spotifyBaseURL,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated request to the Spotify API.
//
// A 401 response triggers one forced token refresh and a single retry; queue
// submissions are otherwise never retried since enqueue is not idempotent.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if s.tokens == nil {
		return fmt.Errorf("%w: no token source configured", shared.ErrNotAuthenticated)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	resp, err := s.send(ctx, method, endpoint, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if token, err = s.tokens.Refresh(ctx); err != nil {
			return err
		}
		if resp, err = s.send(ctx, method, endpoint, token); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return translateError(resp, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (s *SpotifyService) send(ctx context.Context, method, endpoint, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return resp, nil
}

// translateError maps a non-2xx Spotify response to a sentinel error with the
// upstream status and message preserved as the cause.
func translateError(resp *http.Response, endpoint string) error {
	var envelope spotifyError
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	reason := envelope.Error.Reason
	message := envelope.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	// The queue endpoint reports a dormant account as 404 NO_ACTIVE_DEVICE.
	if reason == "NO_ACTIVE_DEVICE" ||
		(resp.StatusCode == http.StatusNotFound && strings.HasPrefix(endpoint, "/me/player")) {
		return fmt.Errorf("%w: %s", shared.ErrNoActiveDevice, message)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, message)
	}

	return fmt.Errorf("%w: spotify returned status %d: %s", shared.ErrAPIRequest, resp.StatusCode, message)
}

// SearchTrack resolves free text to the top-ranked track result.
func (s *SpotifyService) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
	}

	track := toTrack(response.Tracks.Items[0])
	return &track, nil
}

// GetTrack retrieves a single track by ID.
func (s *SpotifyService) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	var st SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", url.PathEscape(trackID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &st); err != nil {
		return nil, err
	}

	track := toTrack(st)
	return &track, nil
}

// QueueTrack appends the track URI to the owner's active playback queue.
func (s *SpotifyService) QueueTrack(ctx context.Context, trackURI string) error {
	endpoint := fmt.Sprintf("/me/player/queue?uri=%s", url.QueryEscape(trackURI))
	return s.doRequest(ctx, http.MethodPost, endpoint, nil)
}

// Recommendations returns tracks similar to the seed track.
func (s *SpotifyService) Recommendations(ctx context.Context, seedTrackID string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 3
	}

	endpoint := fmt.Sprintf("/recommendations?seed_tracks=%s&limit=%d", url.QueryEscape(seedTrackID), limit)

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks))
	for _, st := range response.Tracks {
		tracks = append(tracks, toTrack(st))
	}

	return tracks, nil
}

// Devices lists the owner's playback devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []SpotifyDevice `json:"devices"`
	}

	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", &response); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(response.Devices))
	for _, d := range response.Devices {
		devices = append(devices, models.Device{
			ID:     d.ID,
			Name:   d.Name,
			Type:   d.Type,
			Active: d.IsActive,
		})
	}

	return devices, nil
}

// toTrack converts a Spotify API track into the service-neutral DTO.
func toTrack(st SpotifyTrack) models.Track {
	track := models.Track{
		ID:       st.ID,
		Title:    st.Name,
		Album:    st.Album.Name,
		Duration: st.DurationMS / 1000,
		URI:      st.URI,
	}

	names := make([]string, 0, len(st.Artists))
	for _, artist := range st.Artists {
		names = append(names, artist.Name)
	}
	track.Artist = strings.Join(names, ", ")

	if track.URI == "" && track.ID != "" {
		track.URI = "spotify:track:" + track.ID
	}

	return track
}
