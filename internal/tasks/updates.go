package tasks

import (
	"fmt"

	"github.com/desertthunder/wrapped/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchHistory
	GenerateSnapshot
	ExportSnapshot
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchHistory:
		return "fetch_history"
	case GenerateSnapshot:
		return "generate_snapshot"
	case ExportSnapshot:
		return "export_snapshot"
	default:
		return ""
	}
}

func fetchProfileUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    step,
		Total:   total,
		Message: "Fetching profile...",
	}
}

func profileLoadedUpdate(step, total int, p *models.Profile) ProgressUpdate {
	linked := "not linked"
	if p.SpotifyLinked {
		linked = "linked"
	}
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Signed in as %s (Spotify %s)", p.Username, linked),
		Data:    p,
	}
}

func fetchHistoryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: "Fetching Wrapped history...",
	}
}

func historyLoadedUpdate(step, total int, snapshots []models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d snapshots", len(snapshots)),
		Data:    snapshots,
	}
}

func historyFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("⚠ Could not load history: %v", err),
	}
}

func generatingUpdate(step, total int, term models.Term) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Generating: %s...", step, total, term.Title()),
	}
}

func generateCompletedUpdate(step, total int, s *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d artists)", step, total, s.Title, len(s.Artists)),
		Data:    s,
	}
}

func generateFailedUpdate(step, total int, term models.Term, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerateSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, term.Title(), err),
	}
}

func exportingSnapshotUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSnapshot,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
