package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionLoaded MsgKind = iota
	MsgSearchSettled
	MsgNotesFetched
	MsgNoteFetched
)

type notesResult struct {
	key  string
	page *models.NotesPage
	err  error
}

type noteResult struct {
	note *models.Note
	err  error
}

// sessionLoadedMsg is the constructor for [MsgSessionLoaded]
func sessionLoadedMsg(st session.State) Msg {
	return Msg{kind: MsgSessionLoaded, data: st}
}

// searchSettledMsg is the constructor for [MsgSearchSettled]
func searchSettledMsg(query string) Msg {
	return Msg{kind: MsgSearchSettled, data: query}
}

// notesFetchedMsg is the constructor for [MsgNotesFetched]. key identifies the request it answers.
func notesFetchedMsg(key string, page *models.NotesPage, err error) Msg {
	return Msg{kind: MsgNotesFetched, data: notesResult{key: key, page: page, err: err}}
}

// noteFetchedMsg is the constructor for [MsgNoteFetched]
func noteFetchedMsg(note *models.Note, err error) Msg {
	return Msg{kind: MsgNoteFetched, data: noteResult{note: note, err: err}}
}
