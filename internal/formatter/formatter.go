// package formatter renders notes for the terminal and encodes them for export (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/shared"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// NotesToCSV encodes notes with columns: ID, Title, Tag, Content, CreatedAt, UpdatedAt
func NotesToCSV(notes []models.Note) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Tag", "Content", "CreatedAt", "UpdatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, n := range notes {
		record := []string{
			n.ID,
			n.Title,
			string(n.Tag),
			n.Content,
			n.CreatedAt.UTC().Format(time.RFC3339),
			n.UpdatedAt.UTC().Format(time.RFC3339),
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

// NoteToMarkdown renders a note as a Markdown document
func NoteToMarkdown(n models.Note) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", n.Title)
	fmt.Fprintf(&buf, "**Tag**: %s\n", n.Tag)
	fmt.Fprintf(&buf, "**Created**: %s\n", formatTime(n.CreatedAt))
	fmt.Fprintf(&buf, "**Updated**: %s\n\n", formatTime(n.UpdatedAt))

	if n.Content != "" {
		buf.WriteString(n.Content)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// NoteToText renders a note as plain text
func NoteToText(n models.Note) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Title: %s\n", n.Title)
	fmt.Fprintf(&buf, "Tag: %s\n", n.Tag)
	fmt.Fprintf(&buf, "ID: %s\n", n.ID)
	fmt.Fprintf(&buf, "Created: %s\n", formatTime(n.CreatedAt))
	fmt.Fprintf(&buf, "Updated: %s\n", formatTime(n.UpdatedAt))
	if n.Content != "" {
		fmt.Fprintf(&buf, "\n%s\n", n.Content)
	}
	return buf.Bytes()
}

// FileName derives a safe file name for a note: its ID with path separators and dots replaced.
func FileName(n models.Note, format models.ExportFormat) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, n.ID)
	if base == "" {
		base = "note"
	}
	return base + format.Extension()
}

// WriteNote writes one note to dir in format and returns the file path.
//
// CSV is written as a single-row file; [WriteNotesCSV] is the bulk variant.
func WriteNote(n models.Note, format models.ExportFormat, dir string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case models.ExportMarkdown:
		data = NoteToMarkdown(n)
	case models.ExportText:
		data = NoteToText(n)
	case models.ExportCSV:
		data, err = NotesToCSV([]models.Note{n})
	default:
		data, err = shared.MarshalJSON(n, true)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode note %s: %w", n.ID, err)
	}

	path := filepath.Join(dir, FileName(n, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteNotesCSV writes every note into one CSV file at path.
func WriteNotesCSV(notes []models.Note, path string) error {
	data, err := NotesToCSV(notes)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// ManifestEntry is one note's outcome in an export manifest.
type ManifestEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// Manifest summarizes an export run.
type Manifest struct {
	Format     models.ExportFormat `json:"format"`
	ExportedAt time.Time           `json:"exported_at"`
	Filter     map[string]string   `json:"filter,omitempty"`
	TotalNotes int                 `json:"total_notes"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	Notes      []ManifestEntry     `json:"notes"`
}

// WriteExportManifest writes m as indented JSON to path.
func WriteExportManifest(m *Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NotesTable renders one page of notes as a bordered table.
func NotesTable(page *models.NotesPage, currentPage int) string {
	rows := make([][]string, 0, len(page.Notes))
	for _, n := range page.Notes {
		rows = append(rows, []string{
			n.ID,
			shared.Truncate(n.Title, 40),
			string(n.Tag),
			formatTime(n.UpdatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "TAG", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	if page.TotalPages > 1 {
		b.WriteString("Page " + strconv.Itoa(currentPage) + " of " + strconv.Itoa(page.TotalPages) + "\n")
	}
	return b.String()
}

// WriteNoteDetail prints a note in the plain text layout.
func WriteNoteDetail(w io.Writer, n models.Note) error {
	_, err := w.Write(NoteToText(n))
	return err
}
