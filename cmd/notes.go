package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/notehub/internal/formatter"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/repositories"
	"github.com/desertthunder/notehub/internal/shared"
	"github.com/desertthunder/notehub/internal/tasks"
	"github.com/urfave/cli/v3"
)

// tagFilter parses an optional --tag flag. Empty means no filter.
func tagFilter(s string) (models.Tag, error) {
	if strings.TrimSpace(s) == "" {
		return models.TagAll, nil
	}
	tag, err := models.ParseTag(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidTag, err)
	}
	return tag, nil
}

func noteID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: note id", shared.ErrMissingArgument)
	}
	return id, nil
}

func (r *Runner) writeNote(cmd *cli.Command, note *models.Note) error {
	if cmd.Bool("json") {
		return r.writeJSON(note, cmd.Bool("pretty"))
	}
	return formatter.WriteNoteDetail(r.output, *note)
}

// NotesList prints one page of notes as a table.
func (r *Runner) NotesList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	tag, err := tagFilter(cmd.String("tag"))
	if err != nil {
		return err
	}

	perPage := cmd.Int("per-page")
	if perPage <= 0 {
		perPage = r.config.Search.PerPage
	}
	params := models.ListParams{
		Page:    cmd.Int("page"),
		PerPage: perPage,
		Search:  cmd.String("search"),
		Tag:     tag,
	}.Normalize()

	r.logger.Debug("listing notes", "page", params.Page, "search", params.Search, "tag", params.Tag)

	page, err := api.FetchNotes(ctx, params)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}
	if len(page.Notes) == 0 {
		return r.writePlain("No notes found.\n")
	}
	return r.writePlain("%s\n", formatter.NotesTable(page, params.Page))
}

// NotesGet prints a single note.
func (r *Runner) NotesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	note, err := api.FetchNoteByID(ctx, id)
	if err != nil {
		return err
	}
	return r.writeNote(cmd, note)
}

// NotesCreate creates a note.
func (r *Runner) NotesCreate(ctx context.Context, cmd *cli.Command) error {
	tag, err := models.ParseTag(cmd.String("tag"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidTag, err)
	}
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	note, err := api.CreateNote(ctx, models.CreateNoteParams{
		Title:   cmd.String("title"),
		Content: cmd.String("content"),
		Tag:     tag,
	})
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlain("✓ Created note %s\n\n", note.ID)
	}
	return r.writeNote(cmd, note)
}

// NotesUpdate applies a partial update. Only flags given on the command line are sent.
func (r *Runner) NotesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}

	var params models.UpdateNoteParams
	if cmd.IsSet("title") {
		title := cmd.String("title")
		params.Title = &title
	}
	if cmd.IsSet("content") {
		content := cmd.String("content")
		params.Content = &content
	}
	if cmd.IsSet("tag") {
		tag, err := models.ParseTag(cmd.String("tag"))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidTag, err)
		}
		params.Tag = &tag
	}

	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	note, err := api.UpdateNote(ctx, id, params)
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlain("✓ Updated note %s\n\n", note.ID)
	}
	return r.writeNote(cmd, note)
}

// NotesDelete deletes a note.
func (r *Runner) NotesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := noteID(cmd)
	if err != nil {
		return err
	}
	api, err := r.backend(ctx, cmd)
	if err != nil {
		return err
	}

	if err := api.DeleteNote(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted note %s\n", id)
}

// NotesExport writes every matching note to disk and prints a summary.
func (r *Runner) NotesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := models.ParseExportFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	tag, err := tagFilter(cmd.String("tag"))
	if err != nil {
		return err
	}

	engine, err := r.exportEngine(ctx, cmd)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		Tag:        tag,
		Search:     cmd.String("search"),
		PerPage:    r.config.Search.PerPage,
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("starting export", "format", format, "output", opts.OutputDir)
	r.writePlain("Exporting notes as %s...\n", format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPages:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteNotes:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.ExportNotes(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Export Complete!")
		r.writePlain("Directory: %s\n", result.OutputDirectory)
		r.writePlain("Notes: %d/%d written\n", result.Succeeded, result.TotalNotes)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
		if result.Failed > 0 {
			r.writePlain("\nFailed to write %d notes:\n", result.Failed)
			for _, res := range result.Results {
				if res.Error != nil {
					r.writePlain("  • %s: %v\n", shared.Truncate(res.Title, 40), res.Error)
				}
			}
		}
	}
	return err
}

// NotesExports lists the export history kept in the local database.
func (r *Runner) NotesExports(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	if r.exports == nil {
		r.exports = repositories.NewExportRepository(db)
	}

	records, err := r.exports.List(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}
	if len(records) == 0 {
		return r.writePlain("No exports yet.\n")
	}
	for _, rec := range records {
		r.writePlain("%s  %-8s %3d/%-3d %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Format, rec.Succeeded, rec.TotalNotes, rec.OutputDir)
	}
	return nil
}
