package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
)

// NotesLister is the part of the backend API the engine reads from.
type NotesLister interface {
	FetchNotes(ctx context.Context, params models.ListParams) (*models.NotesPage, error)
}

// ExportRecorder persists a finished export. repositories.ExportRepository implements it.
type ExportRecorder interface {
	Create(ctx context.Context, rec *models.ExportRecord) error
}

// Engine runs notes tasks against the backend.
type Engine struct {
	notes    NotesLister
	recorder ExportRecorder
	logger   *log.Logger
}

// NewEngine creates an engine. recorder may be nil, in which case exports are not recorded.
func NewEngine(notes NotesLister, recorder ExportRecorder, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{notes: notes, recorder: recorder, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
