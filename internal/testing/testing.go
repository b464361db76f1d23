// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// MockService is a test double for [services.Service]. Exports are looked up by playlist ID;
// ExportErrs fails individual IDs. It is safe for concurrent use.
type MockService struct {
	Playlists   []models.Playlist
	Exports     map[string]*models.PlaylistExport
	ExportErrs  map[string]error
	Tracks      map[string]*models.Track
	PlaylistErr error

	mu          sync.Mutex
	exportCalls []string
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return m.Playlists, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if export, ok := m.Exports[playlistID]; ok {
		return &export.Playlist, nil
	}
	return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)
}

func (m *MockService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	m.mu.Lock()
	m.exportCalls = append(m.exportCalls, playlistID)
	m.mu.Unlock()

	if err := m.ExportErrs[playlistID]; err != nil {
		return nil, err
	}
	if export, ok := m.Exports[playlistID]; ok {
		return export, nil
	}
	return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlistID)
}

func (m *MockService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if track, ok := m.Tracks[title]; ok {
		return track, nil
	}
	return nil, fmt.Errorf("%w: no track matches %q", shared.ErrNotFound, title)
}

func (m *MockService) Name() string { return "mock" }

// ExportCalls returns the playlist IDs passed to ExportPlaylist, in call order.
func (m *MockService) ExportCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.exportCalls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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
