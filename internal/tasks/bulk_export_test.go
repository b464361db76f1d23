package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	th "github.com/desertthunder/spotx/internal/testing"
)

func newMockService(ids ...string) *th.MockService {
	exports := make(map[string]*models.PlaylistExport, len(ids))
	for i, id := range ids {
		exports[id] = &models.PlaylistExport{
			Playlist: models.Playlist{ID: id, Name: fmt.Sprintf("Playlist %d", i+1), TrackCount: 1},
			Tracks:   []models.Track{{ID: fmt.Sprintf("t%d", i+1), Title: "Song", Artist: "Artist", Duration: 60}},
		}
	}
	return &th.MockService{Exports: exports}
}

func TestBulkExport(t *testing.T) {
	t.Run("Formats", func(t *testing.T) {
		tests := []struct {
			name      string
			format    formatter.Format
			ids       []string
			wantFiles int
			wantPath  string
		}{
			{name: "single playlist json export", format: formatter.FormatJSON, ids: []string{"p1"}, wantFiles: 1, wantPath: "p1.json"},
			{name: "multiple playlists csv export", format: formatter.FormatCSV, ids: []string{"p1", "p2", "p3"}, wantFiles: 2, wantPath: "p2_tracks.csv"},
			{name: "text export", format: formatter.FormatText, ids: []string{"p1", "p2"}, wantFiles: 1, wantPath: "p1_tracks.txt"},
			{name: "markdown export", format: formatter.FormatMarkdown, ids: []string{"p1"}, wantFiles: 1, wantPath: filepath.Join("p1", "README.md")},
			{name: "empty format defaults to json", format: "", ids: []string{"p1"}, wantFiles: 1, wantPath: "p1.json"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dir := t.TempDir()
				result, err := BulkExport(context.Background(), newMockService(tt.ids...), tt.ids, Options{
					Format:    tt.format,
					Dir:       dir,
					RateLimit: 100,
				})
				if err != nil {
					t.Fatalf("BulkExport() error = %v", err)
				}

				if result.SuccessfulExports != len(tt.ids) || result.FailedExports != 0 {
					t.Errorf("got %d succeeded / %d failed, want %d / 0", result.SuccessfulExports, result.FailedExports, len(tt.ids))
				}
				for _, res := range result.Results {
					if len(res.Files) != tt.wantFiles {
						t.Errorf("%s: got %d files, want %d", res.PlaylistID, len(res.Files), tt.wantFiles)
					}
				}
				th.AssertFileExists(t, filepath.Join(dir, tt.wantPath))
				th.AssertFileExists(t, filepath.Join(dir, ManifestFile))
			})
		}
	})

	t.Run("Results Keep Input Order", func(t *testing.T) {
		ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
		result, err := BulkExport(context.Background(), newMockService(ids...), ids, Options{
			Dir:        t.TempDir(),
			NumWorkers: 3,
			RateLimit:  100,
		})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		for i, res := range result.Results {
			if res.PlaylistID != ids[i] {
				t.Errorf("result %d: got %s, want %s", i, res.PlaylistID, ids[i])
			}
		}
	})

	t.Run("Partial Failures", func(t *testing.T) {
		srv := newMockService("p1", "p3")
		srv.ExportErrs = map[string]error{"p2": errors.New("boom")}
		dir := t.TempDir()

		result, err := BulkExport(context.Background(), srv, []string{"p1", "p2", "p3"}, Options{Dir: dir, RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("got %d succeeded / %d failed, want 2 / 1", result.SuccessfulExports, result.FailedExports)
		}

		failure := result.Results[1]
		if failure.Success || failure.PlaylistName != "Unknown (p2)" {
			t.Errorf("unexpected failure result %+v", failure)
		}
		if !strings.Contains(failure.Error, "boom") {
			t.Errorf("expected error message to mention cause, got %q", failure.Error)
		}

		var manifest Result
		if err := json.Unmarshal([]byte(th.MustReadFile(t, filepath.Join(dir, ManifestFile))), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.TotalPlaylists != 3 || manifest.FailedExports != 1 || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}
		if manifest.Results[1].Error == "" {
			t.Error("manifest should record the failure message")
		}
	})

	t.Run("Unknown Playlist", func(t *testing.T) {
		result, err := BulkExport(context.Background(), newMockService(), []string{"missing"}, Options{Dir: t.TempDir(), RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if !errors.Is(result.Results[0].Err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", result.Results[0].Err)
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		if _, err := BulkExport(context.Background(), nil, []string{"p1"}, Options{Dir: t.TempDir()}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := BulkExport(context.Background(), newMockService("p1"), []string{"p1"}, Options{Format: "xml", Dir: t.TempDir()}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		srv := newMockService("p1", "p2")
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := BulkExport(ctx, srv, []string{"p1", "p2"}, Options{Dir: dir, NumWorkers: 1, RateLimit: 10})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil {
			t.Fatal("result should not be nil")
		}
		if result.FailedExports != 2 {
			t.Errorf("expected both playlists to be marked failed, got %d", result.FailedExports)
		}
		if len(srv.ExportCalls()) != 0 {
			t.Errorf("expected no fetches, got %v", srv.ExportCalls())
		}
		th.AssertFileExists(t, filepath.Join(dir, ManifestFile))
	})

	t.Run("Rate Limiting", func(t *testing.T) {
		ids := []string{"p1", "p2", "p3", "p4", "p5"}
		srv := newMockService(ids...)

		start := time.Now()
		result, err := BulkExport(context.Background(), srv, ids, Options{Dir: t.TempDir(), NumWorkers: 5, RateLimit: 20})
		elapsed := time.Since(start)
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}

		if result.SuccessfulExports != 5 {
			t.Errorf("SuccessfulExports = %d, want 5", result.SuccessfulExports)
		}
		// burst of one: four waits of 50ms after the first fetch
		if elapsed < 150*time.Millisecond {
			t.Errorf("export finished in %v, expected pacing at 20/s", elapsed)
		}
		if len(srv.ExportCalls()) != 5 {
			t.Errorf("service.ExportPlaylist called %d times, want 5", len(srv.ExportCalls()))
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 100)
		_, err := BulkExport(context.Background(), newMockService("p1", "p2"), []string{"p1", "p2"}, Options{
			Dir:       t.TempDir(),
			RateLimit: 100,
			Progress:  progress,
		})
		close(progress)
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}

		phases := make(map[Phase]int)
		for update := range progress {
			phases[update.Phase]++
		}
		if phases[FetchPlaylist] != 2 || phases[WritePlaylist] != 2 || phases[ExportCompleted] != 2 {
			t.Errorf("unexpected phase counts %v", phases)
		}
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			BulkExport(context.Background(), newMockService("p1"), []string{"p1"}, Options{Dir: t.TempDir(), Progress: progress})
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("BulkExport blocked on an unread progress channel")
		}
	})

	t.Run("Markdown With Cover Image", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg"))
		}))
		defer server.Close()

		srv := newMockService("p1")
		srv.Exports["p1"].Playlist.ImageURL = server.URL + "/cover.jpg"
		dir := t.TempDir()

		result, err := BulkExport(context.Background(), srv, []string{"p1"}, Options{
			Format: formatter.FormatMarkdown,
			Dir:    dir,
			Writer: &formatter.Writer{HTTPClient: server.Client()},
		})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if len(result.Results[0].Files) != 2 {
			t.Errorf("expected cover and README, got %v", result.Results[0].Files)
		}
		th.AssertFileExists(t, filepath.Join(dir, "p1", "cover.jpg"))
	})

	t.Run("Creates Output Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		if _, err := BulkExport(context.Background(), newMockService("p1"), []string{"p1"}, Options{Dir: dir}); err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		th.AssertDirExists(t, dir)
	})

	t.Run("Invalid Output Directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := BulkExport(context.Background(), newMockService("p1"), []string{"p1"}, Options{Dir: filepath.Join(file, "sub")}); err == nil {
			t.Error("expected an error for an output path under a regular file")
		}
	})
}

func TestWithDefaults(t *testing.T) {
	tests := []struct {
		name        string
		in          Options
		wantWorkers int
		wantRate    float64
	}{
		{name: "zero values", in: Options{}, wantWorkers: DefaultNumWorkers, wantRate: DefaultRateLimit},
		{name: "capped workers", in: Options{NumWorkers: 50, RateLimit: 2}, wantWorkers: MaxNumWorkers, wantRate: 2},
		{name: "explicit values", in: Options{NumWorkers: 7, RateLimit: 1.5}, wantWorkers: 7, wantRate: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withDefaults(tt.in)
			if got.NumWorkers != tt.wantWorkers || got.RateLimit != tt.wantRate {
				t.Errorf("got workers=%d rate=%v, want %d / %v", got.NumWorkers, got.RateLimit, tt.wantWorkers, tt.wantRate)
			}
			if !strings.HasPrefix(got.Dir, "spotify_export_") && tt.in.Dir == "" {
				t.Errorf("unexpected default dir %q", got.Dir)
			}
			if got.Writer == nil || got.Logger == nil {
				t.Error("expected writer and logger defaults")
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		FetchPlaylist:   "fetch_playlist",
		WritePlaylist:   "write_playlist",
		ExportCompleted: "export_completed",
		ExportFailed:    "export_failed",
		Phase(99):       "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
