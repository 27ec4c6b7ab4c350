package web

import (
	"net/http"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
)

// HomeHandler serves the landing route.
type HomeHandler struct {
	routeSet
	api services.Service
}

func NewHomeHandler(api services.Service) *HomeHandler {
	h := &HomeHandler{routeSet: newRouteSet(), api: api}
	h.handle("GET /{$}", h.home)
	return h
}

// home reports who is visiting. The session probe never fails the page; a broken probe reads as anonymous.
func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	info := h.api.CheckServerSession(r.Context())
	if info == nil || !info.IsAuth {
		server.WriteJSON(w, http.StatusOK, models.UserInfo{})
		return
	}

	out := models.UserInfo{IsAuth: true}
	if user, err := h.api.GetProfile(r.Context()); err == nil {
		out.User = user
	}
	server.WriteJSON(w, http.StatusOK, out)
}
