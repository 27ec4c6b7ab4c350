package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/session"
)

type fakeProber struct {
	info *models.UserInfo
	user *models.User
}

func (f *fakeProber) CheckServerSession(context.Context) *models.UserInfo { return f.info }

func (f *fakeProber) GetProfile(context.Context) (*models.User, error) {
	if f.user == nil {
		return nil, errors.New("no profile")
	}
	return f.user, nil
}

type fakeNotes struct {
	mu     sync.Mutex
	pages  map[int]*models.NotesPage
	err    error
	calls  []models.ListParams
	detail *models.Note
}

func (f *fakeNotes) FetchNotes(_ context.Context, p models.ListParams) (*models.NotesPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[p.Page]; ok {
		return page, nil
	}
	return &models.NotesPage{Notes: []models.Note{}, TotalPages: 0}, nil
}

func (f *fakeNotes) FetchNoteByID(_ context.Context, id string) (*models.Note, error) {
	if f.detail == nil {
		return nil, &services.AuthError{Code: http.StatusNotFound, Message: "Note not found"}
	}
	return f.detail, nil
}

func (f *fakeNotes) lastCall(t *testing.T) models.ListParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("expected at least one FetchNotes call")
	}
	return f.calls[len(f.calls)-1]
}

func newTestModel(prober *fakeProber, notes *fakeNotes) *Model {
	logger := log.New(io.Discard)
	provider := session.NewProvider(prober, session.NewStore(), logger)
	return NewModel(context.Background(), provider, notes, Options{Debounce: 10 * time.Millisecond, Logger: logger})
}

func signedIn() *fakeProber {
	user := &models.User{Email: "ann@example.com", Username: "ann"}
	return &fakeProber{info: &models.UserInfo{IsAuth: true, User: user}, user: user}
}

func twoPages() *fakeNotes {
	return &fakeNotes{pages: map[int]*models.NotesPage{
		1: {Notes: []models.Note{{ID: "1", Title: "First", Tag: models.TagWork}}, TotalPages: 2},
		2: {Notes: []models.Note{{ID: "2", Title: "Second", Tag: models.TagTodo}}, TotalPages: 2},
	}}
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

// start loads the session and the first page.
func start(t *testing.T, m *Model) {
	t.Helper()
	run(t, m, m.loadSession())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("Loading Until Session Resolves", func(t *testing.T) {
		m := newTestModel(signedIn(), twoPages())
		if m.view != LoadingView {
			t.Errorf("expected LoadingView, got %v", m.view)
		}
		if m.View() == "" || !strings.Contains(m.View(), "Loading...") {
			t.Errorf("expected loading text, got %q", m.View())
		}
	})

	t.Run("Anonymous Shows Sign In Hint", func(t *testing.T) {
		notes := twoPages()
		m := newTestModel(&fakeProber{}, notes)

		_, cmd := m.Update(m.loadSession()())
		if cmd != nil {
			t.Error("expected no fetch for anonymous users")
		}
		if m.view != SignedOutView {
			t.Errorf("expected SignedOutView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "notehub auth login") {
			t.Errorf("expected sign-in hint, got %q", m.View())
		}
		if len(notes.calls) != 0 {
			t.Errorf("expected no notes requests, got %d", len(notes.calls))
		}
	})

	t.Run("Authenticated Loads First Page", func(t *testing.T) {
		notes := twoPages()
		m := newTestModel(signedIn(), notes)

		_, cmd := m.Update(m.loadSession()())
		if m.view != NotesView {
			t.Fatalf("expected NotesView, got %v", m.view)
		}
		if !m.loading || !strings.Contains(m.View(), "Loading notes...") {
			t.Error("expected loading status before the page arrives")
		}

		run(t, m, cmd)
		if m.loading {
			t.Error("expected loading to finish")
		}
		if len(m.list.Items()) != 1 {
			t.Errorf("expected 1 item, got %d", len(m.list.Items()))
		}
		p := notes.lastCall(t)
		if p.Page != 1 || p.PerPage != models.DefaultPerPage || !p.Tag.IsAll() {
			t.Errorf("unexpected params %+v", p)
		}
		if !strings.Contains(m.View(), "Page 1 of 2") {
			t.Errorf("expected pager, got %q", m.View())
		}
	})

	t.Run("Paging", func(t *testing.T) {
		notes := twoPages()
		m := newTestModel(signedIn(), notes)
		start(t, m)
		run(t, m, m.fetchNotes())

		_, cmd := m.Update(keyPress("right"))
		run(t, m, cmd)
		if m.params.Page != 2 || notes.lastCall(t).Page != 2 {
			t.Errorf("expected page 2, got %d", m.params.Page)
		}

		if _, cmd := m.Update(keyPress("right")); cmd != nil {
			t.Error("expected no request past the last page")
		}

		_, cmd = m.Update(keyPress("left"))
		if m.params.Page != 1 {
			t.Errorf("expected page 1, got %d", m.params.Page)
		}
		if cmd != nil {
			t.Error("expected cached page 1 to render without a request")
		}
		if _, cmd := m.Update(keyPress("left")); cmd != nil {
			t.Error("expected no request before the first page")
		}
	})

	t.Run("Single Page Hides Pager", func(t *testing.T) {
		notes := &fakeNotes{pages: map[int]*models.NotesPage{
			1: {Notes: []models.Note{{ID: "1", Title: "Only"}}, TotalPages: 1},
		}}
		m := newTestModel(signedIn(), notes)
		start(t, m)
		run(t, m, m.fetchNotes())

		if strings.Contains(m.View(), "Page 1 of 1") {
			t.Error("expected pager to be hidden")
		}
		if _, cmd := m.Update(keyPress("right")); cmd != nil {
			t.Error("expected paging to be disabled")
		}
	})

	t.Run("Settled Search Resets Page", func(t *testing.T) {
		notes := twoPages()
		m := newTestModel(signedIn(), notes)
		start(t, m)
		m.params.Page = 2

		_, cmd := m.Update(searchSettledMsg("  milk"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if m.params.Page != 1 || m.params.Search != "  milk" {
			t.Errorf("unexpected params %+v", m.params)
		}

		// the batch also waits on the debouncer, so fetch directly
		run(t, m, m.fetchNotes())
		if got := notes.lastCall(t).Search; got != "  milk" {
			t.Errorf("expected untrimmed search, got %q", got)
		}
	})

	t.Run("Typing Goes Through The Debouncer", func(t *testing.T) {
		m := newTestModel(signedIn(), twoPages())
		start(t, m)

		m.Update(keyPress("/"))
		if !m.search.Focused() {
			t.Fatal("expected search to be focused")
		}
		for _, r := range "abc" {
			m.Update(keyPress(string(r)))
		}
		if m.search.Value() != "abc" {
			t.Errorf("expected search value abc, got %q", m.search.Value())
		}

		select {
		case q := <-m.debouncer.C():
			if q != "abc" {
				t.Errorf("expected abc, got %q", q)
			}
		case <-time.After(time.Second):
			t.Fatal("expected the debouncer to settle")
		}

		select {
		case q := <-m.debouncer.C():
			t.Errorf("expected a single emission, got extra %q", q)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Stale Response Is Ignored", func(t *testing.T) {
		m := newTestModel(signedIn(), twoPages())
		start(t, m)
		run(t, m, m.fetchNotes())

		m.Update(notesFetchedMsg("notes|old|1|All", &models.NotesPage{Notes: []models.Note{}}, nil))
		if len(m.list.Items()) != 1 {
			t.Errorf("expected stale page to be dropped, got %d items", len(m.list.Items()))
		}
	})

	t.Run("Rate Limit Message", func(t *testing.T) {
		notes := &fakeNotes{err: &services.AuthError{Code: http.StatusTooManyRequests, Message: "slow down"}}
		m := newTestModel(signedIn(), notes)
		start(t, m)
		run(t, m, m.fetchNotes())

		if !strings.Contains(m.View(), services.TooManyRequestsMessage) {
			t.Errorf("expected rate limit message, got %q", m.View())
		}
	})

	t.Run("Empty Result", func(t *testing.T) {
		m := newTestModel(signedIn(), &fakeNotes{})
		start(t, m)
		run(t, m, m.fetchNotes())

		if !strings.Contains(m.View(), "No notes found.") {
			t.Errorf("expected empty message, got %q", m.View())
		}
	})

	t.Run("Tag Cycles And Resets Page", func(t *testing.T) {
		notes := twoPages()
		m := newTestModel(signedIn(), notes)
		start(t, m)
		m.params.Page = 2

		_, cmd := m.Update(keyPress("t"))
		run(t, m, cmd)
		if m.params.Tag != models.TagTodo || m.params.Page != 1 {
			t.Errorf("unexpected params %+v", m.params)
		}
		if notes.lastCall(t).Tag != models.TagTodo {
			t.Errorf("expected Todo filter to be sent, got %q", notes.lastCall(t).Tag)
		}
	})

	t.Run("Open And Close Note", func(t *testing.T) {
		notes := twoPages()
		notes.detail = &models.Note{ID: "1", Title: "First", Content: "body", Tag: models.TagWork}
		m := newTestModel(signedIn(), notes)
		start(t, m)
		run(t, m, m.fetchNotes())

		_, cmd := m.Update(keyPress("enter"))
		run(t, m, cmd)
		if m.view != NoteView {
			t.Fatalf("expected NoteView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "body") {
			t.Errorf("expected note content, got %q", m.View())
		}

		m.Update(keyPress("esc"))
		if m.view != NotesView || m.note != nil {
			t.Error("expected to return to the list")
		}
	})

	t.Run("Quit Stops Debouncer", func(t *testing.T) {
		m := newTestModel(signedIn(), twoPages())
		start(t, m)

		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestNextTag(t *testing.T) {
	seen := []models.Tag{}
	tag := models.TagAll
	for range len(models.TagOptions()) + 1 {
		tag = nextTag(tag)
		seen = append(seen, tag)
	}
	if seen[0] != models.TagTodo {
		t.Errorf("expected Todo after All, got %s", seen[0])
	}
	if last := seen[len(seen)-1]; last != models.TagAll {
		t.Errorf("expected cycle to return to All, got %s", last)
	}
}
