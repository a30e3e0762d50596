package tasks

import (
	"fmt"

	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/processor"
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
	FetchIdentity Phase = iota
	FetchFolders
	FetchReleases
	PrepareRows
	RenderCSV
)

func (p Phase) String() string {
	switch p {
	case FetchIdentity:
		return "fetch_identity"
	case FetchFolders:
		return "fetch_folders"
	case FetchReleases:
		return "fetch_releases"
	case PrepareRows:
		return "prepare_rows"
	case RenderCSV:
		return "render_csv"
	default:
		return ""
	}
}

func fetchIdentityUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchIdentity,
		Step:    1,
		Total:   1,
		Message: "Verifying Discogs credentials...",
	}
}

func fetchFoldersUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFolders,
		Step:    1,
		Total:   1,
		Message: "Fetching collection folders...",
	}
}

func fetchReleasesUpdate(folderID int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReleases,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching releases for folder %d...", folderID),
	}
}

func foundReleasesUpdate(folder models.Folder, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReleases,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d releases in %s", count, folder.Name),
	}
}

func prepareRowsUpdate(selected, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PrepareRows,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Prepared %d rows (%d skipped)", selected, skipped),
	}
}

func skippedReleaseUpdate(step, total int, v *processor.ValidationError) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PrepareRows,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %v", step, total, v),
		Data:    v,
	}
}

func renderUpdate(filename string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderCSV,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rendered %s (%d rows)", filename, rows),
	}
}
