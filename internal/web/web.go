// Package web implements the JSON front-end served by "notehub serve".
//
// Every route sits behind [server.RouteGuard], which supplies the visitor's cookies to the backend calls made here
// and relays the cookies the backend sets.
//
// Routes
//
//	GET    /                      → {isAuth, user?} for the visitor
//	GET    /sign-in, /sign-up     → form descriptors
//	POST   /sign-in, /sign-up     → login / register, relaying session cookies
//	POST   /sign-out              → logout, clearing token cookies
//	POST   /auth/refresh          → refresh the session from the refresh token cookie
//	GET    /notes                 → first page of every note
//	GET    /notes/filter/{tag...} → notes filtered by the first slug segment ("All" or unknown: no filter)
//	GET    /notes/{id}            → one note
//	POST   /notes                 → create
//	PATCH  /notes/{id}            → partial update
//	DELETE /notes/{id}            → delete
//	GET    /profile, PATCH /profile
//
// Errors are JSON {"message": ...} carrying the backend status. A 429 reads
// "Too many requests. Please wait a few seconds".
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/shared"
)

// Options configures [NewRouter].
type Options struct {
	Server  shared.ServerConfig
	Routes  shared.RoutesConfig
	PerPage int
	Logger  *log.Logger
}

// NewRouter assembles the middleware stack and every handler of the front-end.
func NewRouter(api services.Service, opts Options) *server.BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := server.NewBasicRouter()
	r.Use(
		server.Recover(logger),
		server.Logging(logger),
		server.CORS(opts.Server.CORSAllowedOrigins),
		server.RateLimit(server.NewLimiter(opts.Server.RateLimitRPS, opts.Server.RateLimitBurst)),
		server.RouteGuard(api, opts.Routes, logger),
	)

	r.Handler(NewHomeHandler(api))
	r.Handler(NewAuthHandler(api, opts.Routes, logger))
	r.Handler(NewNotesHandler(api, opts.PerPage, logger))
	r.Handler(NewProfileHandler(api))
	return r
}

// routeSet backs a [server.Handler] with its own mux so one value can serve several patterns.
type routeSet struct {
	mux      *http.ServeMux
	patterns []string
}

func newRouteSet() routeSet {
	return routeSet{mux: http.NewServeMux()}
}

func (s *routeSet) handle(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, h)
	s.patterns = append(s.patterns, pattern)
}

func (s *routeSet) Routes() []string {
	return s.patterns
}

func (s *routeSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

var errBadBody = errors.New("invalid request body")

// decodeBody reads a JSON body into v. Form-encoded bodies are accepted through fromForm when it is non-nil.
func decodeBody(r *http.Request, v any, fromForm func(r *http.Request)) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if fromForm != nil && (ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", errBadBody, err)
		}
		fromForm(r)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	server.WriteMessage(w, http.StatusBadRequest, err.Error())
}
