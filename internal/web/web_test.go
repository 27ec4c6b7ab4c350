package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/shared"
	tu "github.com/desertthunder/notehub/internal/testing"
)

// newFrontend wires the real router to a fake backend.
func newFrontend(t *testing.T) (*tu.Backend, http.Handler) {
	t.Helper()

	backend := tu.NewBackend(t)
	cfg := shared.DefaultConfig()
	cfg.Server.RateLimitRPS = 0

	api := services.NewServerAPI(backend.URL, time.Second)
	router := NewRouter(api, Options{
		Server:  cfg.Server,
		Routes:  cfg.Routes,
		PerPage: 12,
		Logger:  log.New(io.Discard),
	})
	return backend, router
}

func authed(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: services.AccessTokenCookie, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: services.RefreshTokenCookie, Value: "ref"})
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body server.ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Message
}

func sessionOK(w http.ResponseWriter, r *http.Request) {
	tu.WriteJSON(w, http.StatusOK, models.UserInfo{IsAuth: true})
}

func TestTagFromSlug(t *testing.T) {
	tests := []struct {
		slug string
		want models.Tag
	}{
		{"All", ""},
		{"all", ""},
		{"", ""},
		{"Work", models.TagWork},
		{"work/extra/segments", models.TagWork},
		{"Unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := TagFromSlug(tt.slug); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHome(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

		var info models.UserInfo
		json.NewDecoder(rec.Body).Decode(&info)
		if rec.Code != http.StatusOK || info.IsAuth {
			t.Errorf("expected anonymous 200, got %d %+v", rec.Code, info)
		}
	})

	t.Run("Authenticated Includes User", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", sessionOK)
		backend.On("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.User{Email: "a@b.c", Username: "ann"})
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/", nil)))

		var info models.UserInfo
		json.NewDecoder(rec.Body).Decode(&info)
		if !info.IsAuth || info.User == nil || info.User.Username != "ann" {
			t.Errorf("expected authenticated info with user, got %+v", info)
		}
	})
}

func TestAuthRoutes(t *testing.T) {
	t.Run("Sign In Form", func(t *testing.T) {
		_, h := newFrontend(t)
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/sign-in", nil))

		var form Form
		json.NewDecoder(rec.Body).Decode(&form)
		if form.Action != "/sign-in" || len(form.Fields) != 2 {
			t.Errorf("unexpected form %+v", form)
		}
	})

	t.Run("Sign In Relays Cookies", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: services.AccessTokenCookie, Value: "new-acc", Path: "/"})
			http.SetCookie(w, &http.Cookie{Name: services.RefreshTokenCookie, Value: "new-ref", Path: "/"})
			tu.WriteJSON(w, http.StatusOK, models.User{Email: "a@b.c"})
		})

		req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(`{"email":"a@b.c","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(h, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		names := map[string]string{}
		for _, c := range rec.Result().Cookies() {
			names[c.Name] = c.Value
		}
		if names[services.AccessTokenCookie] != "new-acc" || names[services.RefreshTokenCookie] != "new-ref" {
			t.Errorf("expected relayed session cookies, got %v", names)
		}
	})

	t.Run("Sign In With Form Body", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.User{Email: "a@b.c"})
		})

		form := url.Values{"email": {"a@b.c"}, "password": {"pw"}}
		req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(h, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if string(backend.Last(t).Body) != `{"email":"a@b.c","password":"pw"}` {
			t.Errorf("unexpected upstream body %s", backend.Last(t).Body)
		}
	})

	t.Run("Invalid Login Message", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(`{"email":"a@b.c","password":"no"}`))
		rec := serve(h, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if msg := decodeMessage(t, rec); msg != "Invalid email or password" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		_, h := newFrontend(t)
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/sign-up", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Sign Up Conflict", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		rec := serve(h, httptest.NewRequest(http.MethodPost, "/sign-up", strings.NewReader(`{"email":"a@b.c","password":"pw"}`)))
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
		if msg := decodeMessage(t, rec); msg != "A user with this email already exists" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("Sign Out Clears Cookies", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodPost, "/sign-out", nil)))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}

		cleared := 0
		for _, c := range rec.Result().Cookies() {
			if c.MaxAge < 0 {
				cleared++
			}
		}
		if cleared != 2 {
			t.Errorf("expected both token cookies cleared, got %d", cleared)
		}
		if backend.Last(t).Header.Get("Authorization") != "Bearer acc" {
			t.Error("expected forwarded credentials on logout")
		}
	})

	t.Run("Refresh Without Cookie", func(t *testing.T) {
		backend, h := newFrontend(t)
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if len(backend.Requests()) != 0 {
			t.Error("expected no upstream call")
		}
	})

	t.Run("Refresh Uses Cookie", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: services.AccessTokenCookie, Value: "rotated", Path: "/"})
			w.WriteHeader(http.StatusOK)
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if string(backend.Last(t).Body) != `{"refreshToken":"ref"}` {
			t.Errorf("unexpected refresh body %s", backend.Last(t).Body)
		}
		if len(rec.Result().Cookies()) != 1 {
			t.Errorf("expected rotated cookie relayed, got %v", rec.Result().Cookies())
		}
	})
}

func TestNotesRoutes(t *testing.T) {
	t.Run("Anonymous Visitor Is Redirected", func(t *testing.T) {
		backend, h := newFrontend(t)
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/notes/filter/All", nil))

		if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/sign-in" {
			t.Errorf("expected redirect to sign-in, got %d %s", rec.Code, rec.Header().Get("Location"))
		}
		if len(backend.Requests()) != 0 {
			t.Error("expected no upstream call")
		}
	})

	t.Run("Filter Slug And Query", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", sessionOK)
		backend.On("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.NotesPage{Notes: []models.Note{{ID: "1"}}, TotalPages: 2})
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/notes/filter/Work?page=2&search=plan", nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		q := backend.Last(t).Query
		if q.Get("tag") != "Work" || q.Get("page") != "2" || q.Get("search") != "plan" || q.Get("perPage") != "12" {
			t.Errorf("unexpected upstream query %v", q)
		}
	})

	t.Run("All Slug Omits Tag", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", sessionOK)
		backend.On("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.NotesPage{})
		})

		serve(h, authed(httptest.NewRequest(http.MethodGet, "/notes/filter/All", nil)))
		if backend.Last(t).Query.Has("tag") {
			t.Error("expected tag to be omitted")
		}
	})

	t.Run("Rate Limited Upstream", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", sessionOK)
		backend.On("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/notes/filter/All", nil)))
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", rec.Code)
		}
		if msg := decodeMessage(t, rec); msg != services.TooManyRequestsMessage {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("CRUD", func(t *testing.T) {
		backend, h := newFrontend(t)
		backend.On("GET /api/auth/session", sessionOK)
		backend.On("GET /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.Note{ID: r.PathValue("id")})
		})
		backend.On("POST /api/notes", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusCreated, models.Note{ID: "new", Title: "Plan"})
		})
		backend.On("PATCH /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.Note{ID: r.PathValue("id"), Title: "Renamed"})
		})
		backend.On("DELETE /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, models.Note{ID: r.PathValue("id")})
		})

		rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/notes/abc", nil)))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"abc"`) {
			t.Errorf("unexpected get response %d %s", rec.Code, rec.Body.String())
		}

		rec = serve(h, authed(httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"Plan","content":"","tag":"Work"}`))))
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = serve(h, authed(httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"","tag":"Work"}`))))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing title, got %d", rec.Code)
		}

		rec = serve(h, authed(httptest.NewRequest(http.MethodPatch, "/notes/abc", strings.NewReader(`{"title":"Renamed"}`))))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Renamed") {
			t.Errorf("unexpected patch response %d %s", rec.Code, rec.Body.String())
		}

		rec = serve(h, authed(httptest.NewRequest(http.MethodDelete, "/notes/abc", nil)))
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if backend.Count(http.MethodDelete, "/api/notes/abc") != 1 {
			t.Error("expected one upstream delete")
		}
	})
}

func TestProfileRoutes(t *testing.T) {
	backend, h := newFrontend(t)
	backend.On("GET /api/auth/session", sessionOK)
	backend.On("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, models.User{Email: "a@b.c", Username: "ann"})
	})
	backend.On("PATCH /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		tu.WriteJSON(w, http.StatusOK, models.User{Email: "a@b.c", Username: "bob"})
	})

	rec := serve(h, authed(httptest.NewRequest(http.MethodGet, "/profile", nil)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ann") {
		t.Errorf("unexpected profile response %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(h, authed(httptest.NewRequest(http.MethodPatch, "/profile", strings.NewReader(`{"username":"bob"}`))))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bob") {
		t.Errorf("unexpected update response %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(h, authed(httptest.NewRequest(http.MethodPatch, "/profile", strings.NewReader(`{"username":""}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty username, got %d", rec.Code)
	}
}
