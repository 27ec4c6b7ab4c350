package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/notehub/internal/models"
)

var (
	_ list.Item = noteItem{}
)

// noteItem wraps [models.Note] to implement [list.Item].
type noteItem struct {
	note models.Note
}

func (i noteItem) FilterValue() string { return i.note.Title }
func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string {
	desc := string(i.note.Tag)
	if !i.note.UpdatedAt.IsZero() {
		desc = fmt.Sprintf("%s • %s", desc, i.note.UpdatedAt.Local().Format("Jan 2, 2006 15:04"))
	}
	return desc
}

func noteItems(notes []models.Note) []list.Item {
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = noteItem{note: n}
	}
	return items
}

// nextTag cycles All → Todo → ... → Shopping → All.
func nextTag(t models.Tag) models.Tag {
	opts := models.TagOptions()
	if t.IsAll() {
		return opts[0]
	}
	for i, o := range opts {
		if o == t && i+1 < len(opts) {
			return opts[i+1]
		}
	}
	return models.TagAll
}
