package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/formatter"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/querycache"
	"github.com/desertthunder/notehub/internal/search"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/session"
)

const signInHint = "Run `notehub auth login` to sign in, then start the browser again."

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SignedOutView
	NotesView
	NoteView
)

// NotesSource is the part of the notes API the browser reads from.
type NotesSource interface {
	FetchNotes(ctx context.Context, params models.ListParams) (*models.NotesPage, error)
	FetchNoteByID(ctx context.Context, id string) (*models.Note, error)
}

// Options tunes the browser. Zero values fall back to the package defaults.
type Options struct {
	PerPage   int
	Debounce  time.Duration
	StaleTime time.Duration
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	provider  *session.Provider
	notes     NotesSource
	cache     *querycache.Cache[*models.NotesPage]
	debouncer *search.Debouncer
	logger    *log.Logger

	session session.State
	params  models.ListParams
	query   string // last value pushed to the debouncer
	pageKey string // cache key of the page the view waits for
	page    *models.NotesPage
	note    *models.Note
	loading bool
	err     error

	width  int
	height int
	search textinput.Model
	list   list.Model
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, provider *session.Provider, notes NotesSource, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search notes"
	ti.CharLimit = 200

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Notes"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return &Model{
		ctx:       ctx,
		view:      LoadingView,
		provider:  provider,
		notes:     notes,
		cache:     querycache.New[*models.NotesPage](opts.StaleTime),
		debouncer: search.NewDebouncer(opts.Debounce),
		logger:    logger,
		params:    models.ListParams{Page: models.DefaultPage, PerPage: opts.PerPage, Tag: models.TagAll}.Normalize(),
		search:    ti,
		list:      l,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the session probe and the search listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadSession(), m.waitForSearch())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(max(msg.Width-4, 0), max(msg.Height-10, 0))
		m.search.Width = max(msg.Width-8, 0)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m.quit()
		}
		switch m.view {
		case LoadingView:
			return m, nil
		case SignedOutView:
			if key.Matches(msg, m.keys.quit, m.keys.back) {
				return m.quit()
			}
			return m, nil
		case NotesView:
			return m.handleNotesKeys(msg)
		case NoteView:
			return m.handleNoteKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionLoaded:
		m.session = msg.data.(session.State)
		if !m.session.IsAuthenticated() {
			m.view = SignedOutView
			return m, nil
		}
		m.view = NotesView
		if user, ok := m.session.User(); ok {
			m.list.Title = fmt.Sprintf("Notes · %s", user.Email)
		}
		return m, m.fetchNotes()

	case MsgSearchSettled:
		query := msg.data.(string)
		cmds := []tea.Cmd{m.waitForSearch()}
		if query != m.params.Search {
			m.params.Search = query
			m.params.Page = models.DefaultPage
			if m.session.IsAuthenticated() {
				cmds = append(cmds, m.fetchNotes())
			}
		}
		return m, tea.Batch(cmds...)

	case MsgNotesFetched:
		res := msg.data.(notesResult)
		if res.key != m.pageKey {
			// superseded by a newer request
			return m, nil
		}
		m.loading = false
		if res.err != nil {
			m.err = res.err
			m.logger.Warn("failed to load notes", "key", res.key, "error", res.err)
			return m, nil
		}
		m.setPage(res.page)
		return m, nil

	case MsgNoteFetched:
		res := msg.data.(noteResult)
		m.loading = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.note = res.note
		m.view = NoteView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleNotesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.Focused() {
		switch {
		case key.Matches(msg, m.keys.back):
			m.search.Blur()
			return m, nil
		case key.Matches(msg, m.keys.open):
			m.search.Blur()
			m.debouncer.Flush()
			return m, nil
		}

		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != m.query {
			m.query = v
			m.debouncer.Push(v)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.prev):
		if m.params.Page > 1 {
			m.params.Page--
			return m, m.fetchNotes()
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		if m.page != nil && m.params.Page < m.page.TotalPages {
			m.params.Page++
			return m, m.fetchNotes()
		}
		return m, nil
	case key.Matches(msg, m.keys.tag):
		m.params.Tag = nextTag(m.params.Tag)
		m.params.Page = models.DefaultPage
		return m, m.fetchNotes()
	case key.Matches(msg, m.keys.refresh):
		m.cache.Invalidate(querycache.NotesPrefix)
		return m, m.fetchNotes()
	case key.Matches(msg, m.keys.open):
		if item, ok := m.list.SelectedItem().(noteItem); ok {
			m.loading = true
			m.err = nil
			return m, m.fetchNote(item.note.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleNoteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = NotesView
		m.note = nil
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == NotesView {
		if m.search.Focused() {
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.debouncer.Stop()
	return m, tea.Quit
}

func (m *Model) setPage(page *models.NotesPage) {
	m.page = page
	m.list.SetItems(noteItems(page.Notes))
}

func (m *Model) loadSession() tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg(m.provider.Init(m.ctx))
	}
}

// waitForSearch blocks until the debouncer settles on a query.
func (m *Model) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		select {
		case q := <-m.debouncer.C():
			return searchSettledMsg(q)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// fetchNotes requests the page described by the current params.
//
// A fresh cache entry is shown at once. Otherwise the last resolved page stays visible until the fetch returns.
func (m *Model) fetchNotes() tea.Cmd {
	params := m.params
	key := querycache.NotesKeyFor(params).String()
	m.pageKey = key
	m.err = nil

	if page, ok := m.cache.Peek(key); ok {
		m.loading = false
		m.setPage(page)
		return nil
	}

	m.loading = true
	if m.page == nil {
		if page, ok := m.cache.Placeholder(); ok {
			m.setPage(page)
		}
	}

	return func() tea.Msg {
		page, err := m.cache.Get(m.ctx, key, func(ctx context.Context) (*models.NotesPage, error) {
			return m.notes.FetchNotes(ctx, params)
		})
		return notesFetchedMsg(key, page, err)
	}
}

func (m *Model) fetchNote(id string) tea.Cmd {
	return func() tea.Msg {
		note, err := m.notes.FetchNoteByID(m.ctx, id)
		return noteFetchedMsg(note, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return styles.help.Render("Loading...")
	case SignedOutView:
		return m.renderSignedOut()
	case NoteView:
		return m.renderNote()
	default:
		return m.renderNotes()
	}
}

func (m *Model) renderSignedOut() string {
	title := styles.title.Render("notehub")
	body := styles.warn.Render("You are not signed in.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, body, signInHint, helpView)
}

func (m *Model) renderNotes() string {
	var b strings.Builder

	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(styles.help.Render("Tag: " + m.params.Tag.String()))
	b.WriteString("\n")
	if status := m.statusLine(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.list.View())

	if m.page != nil && m.page.TotalPages > 1 {
		b.WriteString("\n")
		b.WriteString(styles.pager.Render(fmt.Sprintf("Page %d of %d", m.params.Page, m.page.TotalPages)))
	}

	helpKeys := m.keys.ShortHelp()
	if m.page != nil && m.page.TotalPages > 1 {
		helpKeys = append(helpKeys, m.keys.prev, m.keys.next)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

// statusLine reports loading, errors and empty results.
func (m *Model) statusLine() string {
	switch {
	case m.err != nil:
		return styles.err.Render(services.UserMessage(m.err))
	case m.loading:
		return styles.help.Render("Loading notes...")
	case m.page != nil && len(m.page.Notes) == 0:
		return styles.warn.Render("No notes found.")
	default:
		return ""
	}
}

func (m *Model) renderNote() string {
	if m.note == nil {
		return ""
	}
	title := styles.title.Render(m.note.Title)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, string(formatter.NoteToText(*m.note)), helpView)
}
