package tasks

import (
	"fmt"
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
	FetchPages Phase = iota
	WriteNotes
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case WriteNotes:
		return "write_notes"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchPageUpdate(page, totalPages int) ProgressUpdate {
	msg := "Fetching notes..."
	if totalPages > 0 {
		msg = fmt.Sprintf("Fetching page %d of %d...", page, totalPages)
	}
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    page,
		Total:   totalPages,
		Message: msg,
	}
}

// counter renders "[step/total]", or "[step]" while the total is unknown.
func counter(step, total int) string {
	if total <= 0 {
		return fmt.Sprintf("[%d]", step)
	}
	return fmt.Sprintf("[%d/%d]", step, total)
}

func noteWrittenUpdate(step, total int, res NoteExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteNotes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s ✓ %s", counter(step, total), res.Title),
		Data:    res,
	}
}

func noteFailedUpdate(step, total int, res NoteExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteNotes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s ✗ %s: %v", counter(step, total), res.Title, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s...", path),
	}
}
