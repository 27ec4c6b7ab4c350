package models

import (
	"fmt"
	"strings"
	"time"
)

// ExportFormat selects how exported notes are encoded on disk.
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportCSV      ExportFormat = "csv"
	ExportMarkdown ExportFormat = "markdown"
	ExportText     ExportFormat = "txt"
)

// Extension is the file extension written for the format.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportMarkdown:
		return ".md"
	case ExportText:
		return ".txt"
	case ExportCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// ParseExportFormat accepts json, csv, markdown (or md) and txt (or text).
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return ExportJSON, nil
	case "csv":
		return ExportCSV, nil
	case "markdown", "md":
		return ExportMarkdown, nil
	case "txt", "text":
		return ExportText, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ExportRecord is one finished export, kept in the local database.
type ExportRecord struct {
	ID           string       `json:"id"`
	Format       ExportFormat `json:"format"`
	OutputDir    string       `json:"output_dir"`
	TotalNotes   int          `json:"total_notes"`
	Succeeded    int          `json:"succeeded"`
	Failed       int          `json:"failed"`
	ManifestPath string       `json:"manifest_path"`
	CreatedAt    time.Time    `json:"created_at"`
}
