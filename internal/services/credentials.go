package services

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	// RefreshTokenHeader carries the refresh token on forwarded requests.
	RefreshTokenHeader = "X-Refresh-Token"
)

// CredentialResolver produces the auth headers attached to one outgoing request.
type CredentialResolver interface {
	Resolve(ctx context.Context) http.Header
}

// AmbientCredentials relies on the HTTP client's cookie jar and adds no headers.
type AmbientCredentials struct{}

func (AmbientCredentials) Resolve(context.Context) http.Header { return nil }

// ForwardedCredentials derives headers from the incoming request's cookies stored with [WithRequestCookies].
//
// Cookies already collected by the context's [CookieSink] take precedence, so a token rotated earlier
// in the same request is the one forwarded.
type ForwardedCredentials struct{}

func (ForwardedCredentials) Resolve(ctx context.Context) http.Header {
	h := http.Header{}

	cookies := mergeCookies(RequestCookies(ctx), CookieSinkFrom(ctx).Cookies())
	if len(cookies) == 0 {
		return h
	}

	tok := TokenFromCookies(cookies)
	if tok.AccessToken != "" {
		h.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	}
	if tok.RefreshToken != "" {
		h.Set(RefreshTokenHeader, tok.RefreshToken)
	}
	h.Set("Cookie", CookieHeader(cookies))
	return h
}

// TokenFromCookies reads the access/refresh pair out of cookies.
func TokenFromCookies(cookies []*http.Cookie) *oauth2.Token {
	tok := &oauth2.Token{}
	for _, c := range cookies {
		switch c.Name {
		case AccessTokenCookie:
			tok.AccessToken = c.Value
		case RefreshTokenCookie:
			tok.RefreshToken = c.Value
		}
	}
	return tok
}

// HasTokens reports whether either token cookie is present and non-empty.
func HasTokens(cookies []*http.Cookie) bool {
	tok := TokenFromCookies(cookies)
	return tok.AccessToken != "" || tok.RefreshToken != ""
}

// CookieHeader joins cookies into a Cookie header value.
func CookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// mergeCookies overlays updates onto base by name. Deletions in updates remove the cookie.
func mergeCookies(base, updates []*http.Cookie) []*http.Cookie {
	if len(updates) == 0 {
		return base
	}

	out := make([]*http.Cookie, 0, len(base)+len(updates))
	index := make(map[string]int, len(base))
	for _, c := range base {
		index[c.Name] = len(out)
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	for _, c := range updates {
		i, seen := index[c.Name]
		deleted := c.MaxAge < 0 || c.Value == ""
		switch {
		case seen && deleted:
			out[i] = nil
		case seen:
			out[i] = &http.Cookie{Name: c.Name, Value: c.Value}
		case !deleted:
			index[c.Name] = len(out)
			out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
		}
	}

	merged := out[:0]
	for _, c := range out {
		if c != nil {
			merged = append(merged, c)
		}
	}
	return merged
}

type contextKey int

const (
	requestCookiesKey contextKey = iota
	cookieSinkKey
)

// WithRequestCookies stores the incoming request's cookies for [ForwardedCredentials].
func WithRequestCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, requestCookiesKey, cookies)
}

// RequestCookies returns the cookies stored by [WithRequestCookies].
func RequestCookies(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(requestCookiesKey).([]*http.Cookie)
	return cookies
}

// CookieSink collects Set-Cookie values returned by the backend during one incoming request.
type CookieSink struct {
	mu      sync.Mutex
	cookies []*http.Cookie
}

func NewCookieSink() *CookieSink {
	return &CookieSink{}
}

// Add records cookies, replacing earlier ones with the same name and path.
func (s *CookieSink) Add(cookies ...*http.Cookie) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cookies {
		replaced := false
		for i, existing := range s.cookies {
			if existing.Name == c.Name && existing.Path == c.Path {
				s.cookies[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			s.cookies = append(s.cookies, c)
		}
	}
}

// Cookies returns a snapshot of the collected cookies.
func (s *CookieSink) Cookies() []*http.Cookie {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// CopyTo writes every collected cookie onto w as a Set-Cookie header.
func (s *CookieSink) CopyTo(w http.ResponseWriter) {
	for _, c := range s.Cookies() {
		http.SetCookie(w, c)
	}
}

// WithCookieSink attaches sink to ctx.
func WithCookieSink(ctx context.Context, sink *CookieSink) context.Context {
	return context.WithValue(ctx, cookieSinkKey, sink)
}

// CookieSinkFrom returns the sink attached to ctx, or nil.
func CookieSinkFrom(ctx context.Context) *CookieSink {
	sink, _ := ctx.Value(cookieSinkKey).(*CookieSink)
	return sink
}
