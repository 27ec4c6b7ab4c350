package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/session"
	"github.com/desertthunder/notehub/internal/shared"
)

// RouteClass is how the guard treats a path.
type RouteClass int

const (
	RouteUnguarded RouteClass = iota
	RoutePrivate
	RoutePublic
)

func (c RouteClass) String() string {
	switch c {
	case RoutePrivate:
		return "private"
	case RoutePublic:
		return "public"
	default:
		return "unguarded"
	}
}

// Matcher classifies request paths by prefix.
//
// A path belongs to a prefix when it equals the prefix or continues it with "/".
type Matcher struct {
	Private []string
	Public  []string
}

func NewMatcher(cfg shared.RoutesConfig) Matcher {
	return Matcher{Private: cfg.Private, Public: cfg.Public}
}

func underPrefix(path, prefix string) bool {
	prefix = strings.TrimRight(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Classify returns the class of path. Private prefixes are checked first.
func (m Matcher) Classify(path string) RouteClass {
	for _, p := range m.Private {
		if underPrefix(path, p) {
			return RoutePrivate
		}
	}
	for _, p := range m.Public {
		if underPrefix(path, p) {
			return RoutePublic
		}
	}
	return RouteUnguarded
}

// Decision is the guard's verdict for one request.
type Decision int

const (
	Pass Decision = iota
	RedirectSignIn
	RedirectHome
)

// Decide is the guard's rule table.
//
// A private route redirects to sign-in only when the visitor is unauthenticated and holds no token at all.
// A token whose session turned out invalid passes through. Authenticated visitors of public routes go home.
func Decide(class RouteClass, hasTokens, authenticated bool) Decision {
	switch {
	case class == RoutePrivate && !authenticated && !hasTokens:
		return RedirectSignIn
	case class == RoutePublic && authenticated:
		return RedirectHome
	default:
		return Pass
	}
}

// SessionChecker probes the backend session with the credentials in ctx.
type SessionChecker interface {
	CheckSession(ctx context.Context) (*models.UserInfo, error)
}

// relayWriter writes the sink's cookies right before the response header goes out.
type relayWriter struct {
	http.ResponseWriter
	sink        *services.CookieSink
	wroteHeader bool
}

func (w *relayWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.sink.CopyTo(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *relayWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(p)
}

func (w *relayWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// clearTokenCookies expires both token cookies on w.
func clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{services.AccessTokenCookie, services.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
}

// RouteGuard is the request-time access policy.
//
// Every request gets its cookies and a fresh [services.CookieSink] attached to the context, and every response carries
// the Set-Cookie values collected in the sink. On guarded paths the guard asks the backend for the session (only when a
// token cookie is present), stores the result with [session.WithInfo] and applies [Decide]. Redirects use 307.
// A failed session probe answers 502.
func RouteGuard(api SessionChecker, routes shared.RoutesConfig, logger *log.Logger) Middleware {
	matcher := NewMatcher(routes)
	signIn, home := routes.SignIn, routes.Home
	if signIn == "" {
		signIn = "/sign-in"
	}
	if home == "" {
		home = "/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sink := services.NewCookieSink()
			cookies := r.Cookies()
			ctx := services.WithCookieSink(services.WithRequestCookies(r.Context(), cookies), sink)
			rw := &relayWriter{ResponseWriter: w, sink: sink}

			class := matcher.Classify(r.URL.Path)
			if class == RouteUnguarded {
				next.ServeHTTP(rw, r.WithContext(ctx))
				return
			}

			hasTokens := services.HasTokens(cookies)
			info := &models.UserInfo{}
			if hasTokens {
				checked, err := api.CheckSession(ctx)
				if err != nil {
					logger.Error("session check failed", "path", r.URL.Path, "error", err)
					WriteMessage(rw, http.StatusBadGateway, services.GenericErrorMessage)
					return
				}
				info = checked
			}
			authenticated := info.IsAuth

			switch Decide(class, hasTokens, authenticated) {
			case RedirectSignIn:
				logger.Debug("redirecting to sign-in", "path", r.URL.Path)
				clearTokenCookies(w)
				http.Redirect(w, r, signIn, http.StatusTemporaryRedirect)
			case RedirectHome:
				logger.Debug("redirecting home", "path", r.URL.Path)
				http.Redirect(rw, r, home, http.StatusTemporaryRedirect)
			default:
				next.ServeHTTP(rw, r.WithContext(session.WithInfo(ctx, info)))
			}
		})
	}
}
