// package formatter provides functions to export playlist data to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// Format names an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or a common alias (md, txt).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// ExportToJSON renders the playlist and its tracks as indented JSON.
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Duration, ISRC, URI
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "ISRC", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.ISRC,
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Playlist.Description)
	}
	if export.Playlist.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", export.Playlist.Owner)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", shared.VisibilityString(export.Playlist.Public))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		duration := shared.FormatDuration(track.Duration)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, duration)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// ExportResult lists the files written for one playlist.
type ExportResult struct {
	Format Format
	Files  []string
}

// Writer writes playlist exports to disk. Markdown exports also fetch the playlist cover when
// HTTPClient is set; a failed download only logs a warning.
type Writer struct {
	HTTPClient *http.Client
	Logger     *log.Logger
}

// WriteExport writes export in format under dir without downloading cover images.
func WriteExport(export *models.PlaylistExport, format Format, dir string) (*ExportResult, error) {
	return (&Writer{}).Write(context.Background(), export, format, dir)
}

// Write renders export in format and writes it under dir, which is created when missing.
//
// Files are named after the playlist ID:
//   - json: {id}.json
//   - csv: {id}_tracks.csv and {id}_metadata.json
//   - markdown: {id}/README.md and optionally {id}/cover.jpg
//   - text: {id}_tracks.txt
func (w *Writer) Write(ctx context.Context, export *models.PlaylistExport, format Format, dir string) (*ExportResult, error) {
	if export == nil || export.Playlist.ID == "" {
		return nil, fmt.Errorf("%w: export has no playlist id", shared.ErrInvalidInput)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	base := filepath.Join(dir, export.Playlist.ID)
	result := &ExportResult{Format: format}

	switch format {
	case FormatJSON:
		data, err := ExportToJSON(export)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JSON: %w", err)
		}
		if err := writeFile(result, base+".json", data); err != nil {
			return nil, err
		}
	case FormatCSV:
		data, err := ExportToCSV(export)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CSV: %w", err)
		}
		if err := writeFile(result, base+"_tracks.csv", data); err != nil {
			return nil, err
		}

		metadata, err := ToMetadataJSON(export.Playlist)
		if err != nil {
			return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
		}
		if err := writeFile(result, base+"_metadata.json", metadata); err != nil {
			return nil, err
		}
	case FormatMarkdown:
		if err := w.writeMarkdown(ctx, result, export, base); err != nil {
			return nil, err
		}
	case FormatText:
		data, err := ExportToText(export)
		if err != nil {
			return nil, fmt.Errorf("failed to generate text: %w", err)
		}
		if err := writeFile(result, base+"_tracks.txt", data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}

	return result, nil
}

func (w *Writer) writeMarkdown(ctx context.Context, result *ExportResult, export *models.PlaylistExport, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var cover string
	if w.HTTPClient != nil && export.Playlist.ImageURL != "" {
		imageData, err := DownloadImage(ctx, w.HTTPClient, export.Playlist.ImageURL)
		if err != nil {
			w.logger().Warn("failed to download cover image", "playlist", export.Playlist.ID, "error", err)
		} else if err := writeFile(result, filepath.Join(outputDir, "cover.jpg"), imageData); err != nil {
			w.logger().Warn("failed to save cover image", "playlist", export.Playlist.ID, "error", err)
		} else {
			cover = "cover.jpg"
		}
	}

	data, err := ExportToMarkdown(export, cover)
	if err != nil {
		return fmt.Errorf("failed to generate Markdown: %w", err)
	}
	return writeFile(result, filepath.Join(outputDir, "README.md"), data)
}

func (w *Writer) logger() *log.Logger {
	if w.Logger == nil {
		return shared.DiscardLogger()
	}
	return w.Logger
}

func writeFile(result *ExportResult, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Files = append(result.Files, path)
	return nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrMissingArgument)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, shared.NewTransportError(http.MethodGet, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
