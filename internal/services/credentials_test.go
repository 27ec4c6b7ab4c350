package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/notehub/internal/shared"
	tu "github.com/desertthunder/notehub/internal/testing"
)

func TestCredentials(t *testing.T) {
	t.Run("AmbientCredentials Adds Nothing", func(t *testing.T) {
		if h := (AmbientCredentials{}).Resolve(context.Background()); len(h) != 0 {
			t.Errorf("expected no headers, got %v", h)
		}
	})

	t.Run("ForwardedCredentials", func(t *testing.T) {
		t.Run("Without Cookies", func(t *testing.T) {
			h := (ForwardedCredentials{}).Resolve(context.Background())
			if h.Get("Authorization") != "" || h.Get("Cookie") != "" {
				t.Errorf("expected empty headers, got %v", h)
			}
		})

		t.Run("Refresh Token Only", func(t *testing.T) {
			ctx := WithRequestCookies(context.Background(), []*http.Cookie{{Name: RefreshTokenCookie, Value: "ref"}})
			h := (ForwardedCredentials{}).Resolve(ctx)

			if h.Get("Authorization") != "" {
				t.Errorf("expected no Authorization header, got %q", h.Get("Authorization"))
			}
			if h.Get(RefreshTokenHeader) != "ref" {
				t.Errorf("expected refresh header, got %q", h.Get(RefreshTokenHeader))
			}
			if h.Get("Cookie") != "refreshToken=ref" {
				t.Errorf("unexpected cookie header %q", h.Get("Cookie"))
			}
		})

		t.Run("Sink Cookies Override Request Cookies", func(t *testing.T) {
			sink := NewCookieSink()
			sink.Add(&http.Cookie{Name: AccessTokenCookie, Value: "rotated", Path: "/"})

			ctx := WithRequestCookies(context.Background(), []*http.Cookie{
				{Name: AccessTokenCookie, Value: "old"},
				{Name: RefreshTokenCookie, Value: "ref"},
			})
			ctx = WithCookieSink(ctx, sink)

			h := (ForwardedCredentials{}).Resolve(ctx)
			if h.Get("Authorization") != "Bearer rotated" {
				t.Errorf("expected rotated token, got %q", h.Get("Authorization"))
			}
		})

		t.Run("Deleted Sink Cookie Removes Token", func(t *testing.T) {
			sink := NewCookieSink()
			sink.Add(&http.Cookie{Name: AccessTokenCookie, MaxAge: -1})

			ctx := WithRequestCookies(context.Background(), []*http.Cookie{{Name: AccessTokenCookie, Value: "old"}})
			ctx = WithCookieSink(ctx, sink)

			h := (ForwardedCredentials{}).Resolve(ctx)
			if h.Get("Authorization") != "" || h.Get("Cookie") != "" {
				t.Errorf("expected deleted cookie to be dropped, got %v", h)
			}
		})
	})

	t.Run("HasTokens", func(t *testing.T) {
		tests := []struct {
			name    string
			cookies []*http.Cookie
			want    bool
		}{
			{"None", nil, false},
			{"Unrelated", []*http.Cookie{{Name: "theme", Value: "dark"}}, false},
			{"Empty Access", []*http.Cookie{{Name: AccessTokenCookie, Value: ""}}, false},
			{"Access", []*http.Cookie{{Name: AccessTokenCookie, Value: "a"}}, true},
			{"Refresh", []*http.Cookie{{Name: RefreshTokenCookie, Value: "r"}}, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := HasTokens(tt.cookies); got != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("CookieSink", func(t *testing.T) {
		t.Run("Nil Sink Is Safe", func(t *testing.T) {
			var sink *CookieSink
			sink.Add(&http.Cookie{Name: "a", Value: "b"})
			if sink.Cookies() != nil {
				t.Error("expected nil cookies from nil sink")
			}
		})

		t.Run("Replaces By Name And Path", func(t *testing.T) {
			sink := NewCookieSink()
			sink.Add(&http.Cookie{Name: "a", Value: "1", Path: "/"})
			sink.Add(&http.Cookie{Name: "a", Value: "2", Path: "/"})
			sink.Add(&http.Cookie{Name: "a", Value: "3", Path: "/other"})

			cookies := sink.Cookies()
			if len(cookies) != 2 {
				t.Fatalf("expected 2 cookies, got %d", len(cookies))
			}
			if cookies[0].Value != "2" {
				t.Errorf("expected replaced value 2, got %s", cookies[0].Value)
			}
		})

		t.Run("Captures Backend Set-Cookie", func(t *testing.T) {
			backend := tu.NewBackend(t)
			backend.On("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: "fresh", Path: "/"})
				http.SetCookie(w, &http.Cookie{Name: RefreshTokenCookie, Value: "fresh-ref", Path: "/"})
				w.WriteHeader(http.StatusOK)
			})

			sink := NewCookieSink()
			ctx := WithCookieSink(context.Background(), sink)
			ctx = WithRequestCookies(ctx, []*http.Cookie{{Name: RefreshTokenCookie, Value: "ref"}})

			api := NewServerAPI(backend.URL, time.Second)
			if err := api.RefreshSession(ctx, "ref"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			rec := httptest.NewRecorder()
			sink.CopyTo(rec)

			setCookies := rec.Result().Cookies()
			if len(setCookies) != 2 {
				t.Fatalf("expected 2 relayed cookies, got %d", len(setCookies))
			}
			if setCookies[0].Name != AccessTokenCookie || setCookies[0].Value != "fresh" {
				t.Errorf("unexpected relayed cookie %+v", setCookies[0])
			}
		})
	})
}

func TestErrors(t *testing.T) {
	t.Run("UserMessage", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want string
		}{
			{"Nil", nil, ""},
			{"Too Many Requests", &AuthError{Code: http.StatusTooManyRequests, Message: "rate limited"}, TooManyRequestsMessage},
			{"Raw Status 429", &StatusError{Status: http.StatusTooManyRequests}, TooManyRequestsMessage},
			{"Auth Message", &AuthError{Code: http.StatusNotFound, Message: "Note not found"}, "Note not found"},
			{"Empty Auth Message", &AuthError{Code: http.StatusBadGateway}, GenericErrorMessage},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := UserMessage(tt.err); got != tt.want {
					t.Errorf("expected %q, got %q", tt.want, got)
				}
			})
		}
	})

	t.Run("StatusCode Defaults To 500", func(t *testing.T) {
		if got := StatusCode(errors.New("boom")); got != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", got)
		}
	})

	t.Run("AuthError Unwraps", func(t *testing.T) {
		err := &AuthError{Code: http.StatusUnauthorized, Message: "x", Err: shared.ErrNoRefreshToken}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected ErrAPIRequest")
		}
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Error("expected ErrNoRefreshToken")
		}
	})

	t.Run("wrapError Keeps Existing AuthError", func(t *testing.T) {
		orig := &AuthError{Code: http.StatusConflict, Message: "dup"}
		if got := wrapError(orig, "fallback"); got != orig {
			t.Errorf("expected same AuthError, got %+v", got)
		}
	})
}
