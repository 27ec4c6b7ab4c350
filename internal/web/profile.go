package web

import (
	"net/http"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	routeSet
	api services.Service
}

func NewProfileHandler(api services.Service) *ProfileHandler {
	h := &ProfileHandler{routeSet: newRouteSet(), api: api}
	h.handle("GET /profile", h.get)
	h.handle("PATCH /profile", h.update)
	return h
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.api.GetProfile(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	var params models.UpdateProfileParams
	err := decodeBody(r, &params, func(r *http.Request) {
		params.Username = r.PostFormValue("username")
	})
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.api.UpdateProfile(r.Context(), params)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, user)
}
