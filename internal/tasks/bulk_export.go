package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultNumWorkers = 4
	MaxNumWorkers     = 10
	DefaultRateLimit  = 5.0
	ManifestFile      = "export_manifest.json"
)

// Options contains configuration for bulk playlist exports.
type Options struct {
	Format     formatter.Format      // Export format (default: json)
	Dir        string                // Base output directory (default: spotify_export_{epoch})
	NumWorkers int                   // Concurrent workers (default: 4, max: 10)
	RateLimit  float64               // Playlist fetches per second (default: 5)
	Writer     *formatter.Writer     // Writes each export; set HTTPClient to download Markdown covers
	Logger     *log.Logger           // Optional
	Progress   chan<- ProgressUpdate // Optional, never blocks
}

// PlaylistResult is the outcome of exporting one playlist.
type PlaylistResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
	Err          error    `json:"-"`
}

// Result summarizes a bulk export. It is also the content of the manifest file.
type Result struct {
	Format            formatter.Format `json:"format"`
	OutputDirectory   string           `json:"output_directory"`
	TotalPlaylists    int              `json:"total_playlists"`
	SuccessfulExports int              `json:"successful_exports"`
	FailedExports     int              `json:"failed_exports"`
	StartedAt         time.Time        `json:"started_at"`
	CompletedAt       time.Time        `json:"completed_at"`
	Results           []PlaylistResult `json:"results"`
	ManifestPath      string           `json:"-"`
}

// BulkExport exports each playlist in ids from srv into opts.Dir.
//
// Results keep the order of ids. Per-playlist failures are recorded, not returned. When ctx is
// cancelled the playlists not yet started are marked failed, the manifest is still written, and
// the context error is returned alongside the partial result.
func BulkExport(ctx context.Context, srv services.Service, ids []string, opts Options) (*Result, error) {
	if srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	format, err := formatter.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts = withDefaults(opts)
	logger := shared.WithLogger(opts.Logger, "component", "bulk_export")

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &Result{
		Format:          format,
		OutputDirectory: opts.Dir,
		TotalPlaylists:  len(ids),
		StartedAt:       time.Now().UTC(),
		Results:         make([]PlaylistResult, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	total := len(ids)
	var completed atomic.Int32

	finish := func(i int, res PlaylistResult) {
		result.Results[i] = res
		step := int(completed.Add(1))
		if res.Success {
			logger.Debug("exported playlist", "playlist", res.PlaylistID, "files", len(res.Files))
			sendProgress(opts.Progress, exportCompletedUpdate(step, total, res))
		} else {
			logger.Warn("playlist export failed", "playlist", res.PlaylistID, "error", res.Err)
			sendProgress(opts.Progress, exportFailedUpdate(step, total, res))
		}
	}

	var g errgroup.Group
	g.SetLimit(opts.NumWorkers)

	var cancelled error
	for i, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			cancelled = ctx.Err()
			if cancelled == nil {
				cancelled = err
			}
			for j := i; j < len(ids); j++ {
				finish(j, failed(ids[j], "", fmt.Errorf("export not started: %w", cancelled)))
			}
			break
		}

		g.Go(func() error {
			sendProgress(opts.Progress, fetchingPlaylistUpdate(i+1, total, id))
			finish(i, exportOne(ctx, srv, opts, format, id, i+1, total))
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range result.Results {
		if res.Success {
			result.SuccessfulExports++
		} else {
			result.FailedExports++
		}
	}
	result.CompletedAt = time.Now().UTC()

	manifestPath := filepath.Join(opts.Dir, ManifestFile)
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	logger.Info("bulk export finished", "total", result.TotalPlaylists, "succeeded", result.SuccessfulExports, "failed", result.FailedExports)
	return result, cancelled
}

func withDefaults(opts Options) Options {
	if opts.Dir == "" {
		opts.Dir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultNumWorkers
	}
	if opts.NumWorkers > MaxNumWorkers {
		opts.NumWorkers = MaxNumWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Writer == nil {
		opts.Writer = &formatter.Writer{Logger: opts.Logger}
	}
	return opts
}

func exportOne(ctx context.Context, srv services.Service, opts Options, format formatter.Format, id string, step, total int) PlaylistResult {
	export, err := srv.ExportPlaylist(ctx, id)
	if err != nil {
		return failed(id, "", fmt.Errorf("failed to fetch playlist: %w", err))
	}

	sendProgress(opts.Progress, writingPlaylistUpdate(step, total, id, export.Playlist.Name))

	written, err := opts.Writer.Write(ctx, export, format, opts.Dir)
	if err != nil {
		return failed(id, export.Playlist.Name, fmt.Errorf("%s export failed: %w", format, err))
	}

	return PlaylistResult{
		PlaylistID:   id,
		PlaylistName: export.Playlist.Name,
		Success:      true,
		Files:        written.Files,
	}
}

func failed(id, name string, err error) PlaylistResult {
	if name == "" {
		name = fmt.Sprintf("Unknown (%s)", id)
	}
	return PlaylistResult{PlaylistID: id, PlaylistName: name, Error: err.Error(), Err: err}
}

func writeManifest(result *Result, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
