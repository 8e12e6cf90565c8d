// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/juke/internal/models"
)

// MockService is a configurable test double for [services.Service].
//
// Each call increments its counter so tests can assert the exact number of
// upstream calls made (e.g. exactly one search per free-text submission).
type MockService struct {
	SearchCalls    int
	GetCalls       int
	QueueCalls     int
	RecommendCalls int

	SearchResult    *models.Track
	SearchErr       error
	GetResult       *models.Track
	GetErr          error
	QueueErr        error
	RecommendResult []models.Track
	RecommendErr    error
	DeviceList      []models.Device
}

func (m *MockService) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	m.SearchCalls++
	return m.SearchResult, m.SearchErr
}

func (m *MockService) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	m.GetCalls++
	return m.GetResult, m.GetErr
}

func (m *MockService) QueueTrack(ctx context.Context, trackURI string) error {
	m.QueueCalls++
	return m.QueueErr
}

func (m *MockService) Recommendations(ctx context.Context, seedTrackID string, limit int) ([]models.Track, error) {
	m.RecommendCalls++
	return m.RecommendResult, m.RecommendErr
}

func (m *MockService) Devices(ctx context.Context) ([]models.Device, error) {
	return m.DeviceList, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
