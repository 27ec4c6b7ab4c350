package web

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
	"github.com/desertthunder/notehub/internal/shared"
)

// FormField describes one input of a [Form].
type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Form tells a client how to render the sign-in and sign-up pages.
type Form struct {
	Title  string      `json:"title"`
	Action string      `json:"action"`
	Submit string      `json:"submit"`
	Fields []FormField `json:"fields"`
}

var credentialFields = []FormField{
	{Name: "email", Type: "email", Label: "Email", Required: true},
	{Name: "password", Type: "password", Label: "Password", Required: true},
}

// AuthHandler serves sign-in, sign-up, sign-out and session refresh.
type AuthHandler struct {
	routeSet
	api    services.Service
	routes shared.RoutesConfig
	logger *log.Logger
}

func NewAuthHandler(api services.Service, routes shared.RoutesConfig, logger *log.Logger) *AuthHandler {
	h := &AuthHandler{routeSet: newRouteSet(), api: api, routes: routes, logger: logger}
	h.handle("GET /sign-in", h.form("Sign in", "/sign-in", "Log in"))
	h.handle("GET /sign-up", h.form("Sign up", "/sign-up", "Register"))
	h.handle("POST /sign-in", h.signIn)
	h.handle("POST /sign-up", h.signUp)
	h.handle("POST /sign-out", h.signOut)
	h.handle("POST /auth/refresh", h.refresh)
	return h
}

func (h *AuthHandler) form(title, action, submit string) http.HandlerFunc {
	form := Form{Title: title, Action: action, Submit: submit, Fields: credentialFields}
	return func(w http.ResponseWriter, r *http.Request) {
		server.WriteJSON(w, http.StatusOK, form)
	}
}

func readCredentials(r *http.Request) (models.Credentials, error) {
	var creds models.Credentials
	err := decodeBody(r, &creds, func(r *http.Request) {
		creds.Email = r.PostFormValue("email")
		creds.Password = r.PostFormValue("password")
	})
	return creds, err
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.api.Login(r.Context(), creds)
	if err != nil {
		h.logger.Debug("sign-in failed", "email", creds.Email, "error", err)
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.api.Register(r.Context(), creds)
	if err != nil {
		h.logger.Debug("sign-up failed", "email", creds.Email, "error", err)
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, user)
}

// signOut logs out upstream and always expires the token cookies locally.
func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	err := h.api.Logout(r.Context())
	for _, name := range []string{services.AccessTokenCookie, services.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	if err != nil {
		h.logger.Warn("logout failed", "error", err)
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	tok := services.TokenFromCookies(services.RequestCookies(r.Context()))
	if err := h.api.RefreshSession(r.Context(), tok.RefreshToken); err != nil {
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
