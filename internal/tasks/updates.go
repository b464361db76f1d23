package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase      Phase  // Operation phase
	Step       int    // Current step number within phase
	Total      int    // Total steps in this phase
	PlaylistID string // Playlist the update refers to
	Message    string // Human-readable message for display
	Err        error  // Set for [ExportFailed]
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	WritePlaylist
	ExportCompleted
	ExportFailed
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case WritePlaylist:
		return "write_playlist"
	case ExportCompleted:
		return "export_completed"
	case ExportFailed:
		return "export_failed"
	default:
		return ""
	}
}

// sendProgress never blocks; updates are dropped when nobody is listening.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchingPlaylistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:      FetchPlaylist,
		Step:       step,
		Total:      total,
		PlaylistID: id,
		Message:    fmt.Sprintf("[%d/%d] Fetching %s...", step, total, id),
	}
}

func writingPlaylistUpdate(step, total int, id, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:      WritePlaylist,
		Step:       step,
		Total:      total,
		PlaylistID: id,
		Message:    fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, res PlaylistResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:      ExportCompleted,
		Step:       step,
		Total:      total,
		PlaylistID: res.PlaylistID,
		Message:    fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.PlaylistName, len(res.Files)),
	}
}

func exportFailedUpdate(step, total int, res PlaylistResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:      ExportFailed,
		Step:       step,
		Total:      total,
		PlaylistID: res.PlaylistID,
		Message:    fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.PlaylistName, res.Err),
		Err:        res.Err,
	}
}
