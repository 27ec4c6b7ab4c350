package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/notehub/internal/formatter"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
	manifestFile     = "export_manifest.json"
	csvFile          = "notes.csv"
)

// ExportOpts contains configuration for a notes export.
type ExportOpts struct {
	Format     models.ExportFormat // json, csv, markdown or txt (default json)
	OutputDir  string              // Output directory (default: notes_export_{epoch})
	Tag        models.Tag          // Optional tag filter
	Search     string              // Optional search filter
	PerPage    int                 // Page size used while listing (default 12)
	NumWorkers int                 // Concurrent writers (default 4, max 10)
	RateLimit  float64             // Page requests per second (default 5)
}

// NoteExportResult is the outcome for a single note.
type NoteExportResult struct {
	NoteID  string
	Title   string
	File    string
	Success bool
	Error   error

	note models.Note
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Format          models.ExportFormat
	OutputDirectory string
	ManifestPath    string
	TotalNotes      int
	Succeeded       int
	Failed          int
	Results         []NoteExportResult
}

// ExportNotes exports every note matching opts.
//
// Pages are listed sequentially under a rate limiter while a worker pool writes notes as they arrive. A failed page
// stops the listing; notes already queued are still written, the manifest reflects them and the error is returned
// together with the partial result.
func (e *Engine) ExportNotes(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.notes == nil {
		return nil, fmt.Errorf("%w: notes API not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = models.ExportJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("notes_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.Note, opts.NumWorkers*2)
	results := make(chan NoteExportResult, opts.NumWorkers*2)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	var fetchErr error
	go func() {
		defer close(jobs)
		fetchErr = e.listNotes(ctx, progress, limiter, jobs, opts)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &ExportResult{Format: opts.Format, OutputDirectory: opts.OutputDir}
	for res := range results {
		result.Results = append(result.Results, res)
		result.TotalNotes++
		if res.Success {
			result.Succeeded++
			e.sendProgress(progress, noteWrittenUpdate(result.TotalNotes, 0, res))
		} else {
			result.Failed++
			e.sendProgress(progress, noteFailedUpdate(result.TotalNotes, 0, res))
		}
	}
	// results is closed only after the lister returned, so fetchErr is settled here.

	if opts.Format == models.ExportCSV {
		if err := e.writeCSV(result, e.collected(result), opts); err != nil {
			return result, err
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestFile)
	e.sendProgress(progress, manifestUpdate(manifestPath))
	if err := formatter.WriteExportManifest(buildManifest(result, opts), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.record(ctx, result)

	if fetchErr != nil {
		return result, fmt.Errorf("export stopped early: %w", fetchErr)
	}
	return result, nil
}

// listNotes pages through the notes list, queueing every note on jobs.
func (e *Engine) listNotes(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	limiter *rate.Limiter,
	jobs chan<- models.Note,
	opts ExportOpts,
) error {
	params := models.ListParams{Page: 1, PerPage: opts.PerPage, Search: opts.Search, Tag: opts.Tag}.Normalize()
	totalPages := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		e.sendProgress(progress, fetchPageUpdate(params.Page, totalPages))

		page, err := e.notes.FetchNotes(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to fetch page %d: %w", params.Page, err)
		}
		totalPages = page.TotalPages

		for _, n := range page.Notes {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if params.Page >= totalPages || len(page.Notes) == 0 {
			return nil
		}
		params.Page++
	}
}

// exportWorker is a worker goroutine that writes notes from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.Note,
	results chan<- NoteExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for n := range jobs {
		res := NoteExportResult{NoteID: n.ID, Title: n.Title}

		switch {
		case ctx.Err() != nil:
			res.Error = ctx.Err()
		case opts.Format == models.ExportCSV:
			// written in bulk once every note has arrived
			res.Success = true
			res.note = n
		default:
			path, err := formatter.WriteNote(n, opts.Format, opts.OutputDir)
			if err != nil {
				res.Error = err
			} else {
				res.File = path
				res.Success = true
			}
		}
		results <- res
	}
}

func (e *Engine) collected(result *ExportResult) []models.Note {
	notes := make([]models.Note, 0, result.Succeeded)
	for _, res := range result.Results {
		if res.Success {
			notes = append(notes, res.note)
		}
	}
	return notes
}

func (e *Engine) writeCSV(result *ExportResult, notes []models.Note, opts ExportOpts) error {
	path := filepath.Join(opts.OutputDir, csvFile)
	if err := formatter.WriteNotesCSV(notes, path); err != nil {
		return fmt.Errorf("export completed but failed to write CSV: %w", err)
	}
	for i := range result.Results {
		if result.Results[i].Success {
			result.Results[i].File = path
		}
	}
	return nil
}

func buildManifest(result *ExportResult, opts ExportOpts) *formatter.Manifest {
	m := &formatter.Manifest{
		Format:     result.Format,
		ExportedAt: time.Now().UTC(),
		TotalNotes: result.TotalNotes,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Notes:      make([]formatter.ManifestEntry, 0, len(result.Results)),
	}

	filter := map[string]string{}
	if !opts.Tag.IsAll() {
		filter["tag"] = string(opts.Tag)
	}
	if opts.Search != "" {
		filter["search"] = opts.Search
	}
	if len(filter) > 0 {
		m.Filter = filter
	}

	for _, res := range result.Results {
		entry := formatter.ManifestEntry{ID: res.NoteID, Title: res.Title}
		if res.File != "" {
			entry.File = filepath.Base(res.File)
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Notes = append(m.Notes, entry)
	}
	return m
}

// record stores the run through the recorder. Failures are logged, never returned.
func (e *Engine) record(ctx context.Context, result *ExportResult) {
	if e.recorder == nil {
		return
	}

	rec := &models.ExportRecord{
		Format:       result.Format,
		OutputDir:    result.OutputDirectory,
		TotalNotes:   result.TotalNotes,
		Succeeded:    result.Succeeded,
		Failed:       result.Failed,
		ManifestPath: result.ManifestPath,
	}
	if err := e.recorder.Create(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn("failed to record export", "error", err)
	}
}
