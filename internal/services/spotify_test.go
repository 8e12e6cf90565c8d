package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/juke/internal/shared"
)

// staticTokens is a TokenSource returning fixed tokens
type staticTokens struct {
	token        string
	refreshed    string
	tokenErr     error
	refreshErr   error
	refreshCalls int64
}

func (s *staticTokens) Token(ctx context.Context) (string, error) {
	return s.token, s.tokenErr
}

func (s *staticTokens) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt64(&s.refreshCalls, 1)
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return s.refreshed, nil
}

// newTestService points a SpotifyService at a fake API server
func newTestService(t *testing.T, tokens TokenSource, handler http.HandlerFunc) (*SpotifyService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service := NewSpotifyService(tokens, srv.Client())
	service.baseURL = srv.URL

	return service, srv
}

const trackJSON = `{
	"id": "4cOdK2wGLETKBW3PvgPWqT",
	"name": "Mr. Brightside",
	"artists": [{"id": "a1", "name": "The Killers"}],
	"album": {"id": "al1", "name": "Hot Fuss"},
	"duration_ms": 222000,
	"uri": "spotify:track:4cOdK2wGLETKBW3PvgPWqT"
}`

func TestNewOAuthConfig(t *testing.T) {
	t.Run("with valid credentials", func(t *testing.T) {
		config, err := NewOAuthConfig(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
			"redirect_uri":  "http://localhost:9999/callback",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.RedirectURL != "http://localhost:9999/callback" {
			t.Errorf("expected custom redirect URI, got %s", config.RedirectURL)
		}
		if len(config.Scopes) == 0 {
			t.Error("expected playback scopes to be set")
		}
	})

	t.Run("missing client id", func(t *testing.T) {
		_, err := NewOAuthConfig(map[string]string{"client_secret": "secret"})
		if err == nil {
			t.Error("expected error for missing client_id")
		}
	})

	t.Run("missing client secret", func(t *testing.T) {
		_, err := NewOAuthConfig(map[string]string{"client_id": "id"})
		if err == nil {
			t.Error("expected error for missing client_secret")
		}
	})

	t.Run("default redirect URI", func(t *testing.T) {
		config, err := NewOAuthConfig(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.RedirectURL != "http://127.0.0.1:8888/callback" {
			t.Errorf("expected default redirect URI, got %s", config.RedirectURL)
		}
	})
}

func TestSpotifyService_SearchTrack(t *testing.T) {
	t.Run("returns the top result", func(t *testing.T) {
		var gotQuery, gotType, gotLimit, gotAuth string

		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("expected path /search, got %s", r.URL.Path)
			}
			gotQuery = r.URL.Query().Get("q")
			gotType = r.URL.Query().Get("type")
			gotLimit = r.URL.Query().Get("limit")
			gotAuth = r.Header.Get("Authorization")

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"tracks": {"items": [%s]}}`, trackJSON)
		})

		track, err := service.SearchTrack(context.Background(), "mr brightside")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotQuery != "mr brightside" {
			t.Errorf("expected query to be forwarded, got %q", gotQuery)
		}
		if gotType != "track" || gotLimit != "1" {
			t.Errorf("expected type=track limit=1, got type=%q limit=%q", gotType, gotLimit)
		}
		if gotAuth != "Bearer access_token" {
			t.Errorf("expected bearer token header, got %q", gotAuth)
		}
		if track.Title != "Mr. Brightside" || track.Artist != "The Killers" {
			t.Errorf("unexpected track: %+v", track)
		}
		if track.URI != "spotify:track:4cOdK2wGLETKBW3PvgPWqT" {
			t.Errorf("unexpected track URI: %s", track.URI)
		}
	})

	t.Run("no results", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"tracks": {"items": []}}`)
		})

		_, err := service.SearchTrack(context.Background(), "aslkdjalskdj")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestSpotifyService_GetTrack(t *testing.T) {
	t.Run("fetches by id", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tracks/4cOdK2wGLETKBW3PvgPWqT" {
				t.Errorf("expected track path, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, trackJSON)
		})

		track, err := service.GetTrack(context.Background(), "4cOdK2wGLETKBW3PvgPWqT")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.ID != "4cOdK2wGLETKBW3PvgPWqT" {
			t.Errorf("unexpected track id: %s", track.ID)
		}
		if track.Album != "Hot Fuss" {
			t.Errorf("unexpected album: %s", track.Album)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "Non existing id"}}`)
		})

		_, err := service.GetTrack(context.Background(), "nope")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestSpotifyService_QueueTrack(t *testing.T) {
	t.Run("posts the track uri", func(t *testing.T) {
		var gotMethod, gotURI string

		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/player/queue" {
				t.Errorf("expected queue path, got %s", r.URL.Path)
			}
			gotMethod = r.Method
			gotURI = r.URL.Query().Get("uri")
			w.WriteHeader(http.StatusNoContent)
		})

		err := service.QueueTrack(context.Background(), "spotify:track:4cOdK2wGLETKBW3PvgPWqT")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Errorf("expected POST, got %s", gotMethod)
		}
		if gotURI != "spotify:track:4cOdK2wGLETKBW3PvgPWqT" {
			t.Errorf("expected track uri param, got %q", gotURI)
		}
	})

	t.Run("no active device", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "Player command failed: No active device found", "reason": "NO_ACTIVE_DEVICE"}}`)
		})

		err := service.QueueTrack(context.Background(), "spotify:track:4cOdK2wGLETKBW3PvgPWqT")
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Fatalf("expected ErrNoActiveDevice, got %v", err)
		}
	})

	t.Run("queue 404 without reason still maps to no active device", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := service.QueueTrack(context.Background(), "spotify:track:4cOdK2wGLETKBW3PvgPWqT")
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Fatalf("expected ErrNoActiveDevice, got %v", err)
		}
	})
}

func TestSpotifyService_Retry(t *testing.T) {
	t.Run("401 forces one refresh and retry", func(t *testing.T) {
		tokens := &staticTokens{token: "stale_token", refreshed: "refreshed_token"}
		var hits int64

		service, _ := newTestService(t, tokens, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt64(&hits, 1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.Header.Get("Authorization") != "Bearer refreshed_token" {
				t.Errorf("expected refreshed token on retry, got %q", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, trackJSON)
		})

		track, err := service.GetTrack(context.Background(), "4cOdK2wGLETKBW3PvgPWqT")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track == nil {
			t.Fatal("expected track after retry")
		}
		if atomic.LoadInt64(&hits) != 2 {
			t.Errorf("expected two upstream calls, got %d", hits)
		}
		if atomic.LoadInt64(&tokens.refreshCalls) != 1 {
			t.Errorf("expected one refresh, got %d", tokens.refreshCalls)
		}
	})

	t.Run("refresh failure is surfaced", func(t *testing.T) {
		tokens := &staticTokens{token: "stale_token", refreshErr: shared.ErrNotAuthenticated}

		service, _ := newTestService(t, tokens, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := service.GetTrack(context.Background(), "4cOdK2wGLETKBW3PvgPWqT")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("server errors map to an api error", func(t *testing.T) {
		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := service.GetTrack(context.Background(), "4cOdK2wGLETKBW3PvgPWqT")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("missing token source", func(t *testing.T) {
		service := NewSpotifyService(nil, nil)

		_, err := service.GetTrack(context.Background(), "4cOdK2wGLETKBW3PvgPWqT")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyService_Recommendations(t *testing.T) {
	t.Run("returns similar tracks for a seed", func(t *testing.T) {
		var gotSeeds, gotLimit string

		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/recommendations" {
				t.Errorf("expected path /recommendations, got %s", r.URL.Path)
			}
			gotSeeds = r.URL.Query().Get("seed_tracks")
			gotLimit = r.URL.Query().Get("limit")

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"tracks": [%s]}`, trackJSON)
		})

		tracks, err := service.Recommendations(context.Background(), "4cOdK2wGLETKBW3PvgPWqT", 6)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotSeeds != "4cOdK2wGLETKBW3PvgPWqT" {
			t.Errorf("expected seed track to be forwarded, got %q", gotSeeds)
		}
		if gotLimit != "6" {
			t.Errorf("expected limit 6, got %q", gotLimit)
		}
		if len(tracks) != 1 || tracks[0].Title != "Mr. Brightside" {
			t.Errorf("unexpected tracks: %+v", tracks)
		}
	})

	t.Run("defaults the limit", func(t *testing.T) {
		var gotLimit string

		service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"tracks": []}`)
		})

		tracks, err := service.Recommendations(context.Background(), "4cOdK2wGLETKBW3PvgPWqT", 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotLimit != "3" {
			t.Errorf("expected default limit 3, got %q", gotLimit)
		}
		if len(tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(tracks))
		}
	})
}

func TestSpotifyService_Devices(t *testing.T) {
	service, _ := newTestService(t, &staticTokens{token: "access_token"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/player/devices" {
			t.Errorf("expected devices path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"devices": [{"id": "d1", "is_active": true, "name": "Kitchen Speaker", "type": "Speaker"}]}`)
	})

	devices, err := service.Devices(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("expected one device, got %d", len(devices))
	}
	if !devices[0].Active || devices[0].Name != "Kitchen Speaker" {
		t.Errorf("unexpected device: %+v", devices[0])
	}
}

func TestToTrack(t *testing.T) {
	t.Run("joins multiple artists", func(t *testing.T) {
		track := toTrack(SpotifyTrack{
			ID:      "t1",
			Name:    "Collab",
			Artists: []SpotifyArtist{{Name: "First"}, {Name: "Second"}},
		})

		if track.Artist != "First, Second" {
			t.Errorf("expected joined artists, got %q", track.Artist)
		}
	})

	t.Run("derives uri from id", func(t *testing.T) {
		track := toTrack(SpotifyTrack{ID: "t1", Name: "No URI"})

		if track.URI != "spotify:track:t1" {
			t.Errorf("expected derived uri, got %q", track.URI)
		}
	})
}
