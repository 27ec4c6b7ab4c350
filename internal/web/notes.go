package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/server"
	"github.com/desertthunder/notehub/internal/services"
)

// NotesHandler serves the notes list, detail and mutations.
type NotesHandler struct {
	routeSet
	api     services.Service
	perPage int
	logger  *log.Logger
}

func NewNotesHandler(api services.Service, perPage int, logger *log.Logger) *NotesHandler {
	if perPage <= 0 {
		perPage = models.DefaultPerPage
	}
	h := &NotesHandler{routeSet: newRouteSet(), api: api, perPage: perPage, logger: logger}
	h.handle("GET /notes", h.list)
	h.handle("GET /notes/filter/{slug...}", h.list)
	h.handle("GET /notes/{id}", h.get)
	h.handle("POST /notes", h.create)
	h.handle("PATCH /notes/{id}", h.update)
	h.handle("DELETE /notes/{id}", h.delete)
	return h
}

// TagFromSlug takes the tag from the first slug segment. "All", an empty slug or an unknown tag yield no filter.
func TagFromSlug(slug string) models.Tag {
	first, _, _ := strings.Cut(strings.Trim(slug, "/"), "/")
	tag, err := models.ParseTag(first)
	if err != nil || tag.IsAll() {
		return ""
	}
	return tag
}

// ListParamsFromRequest reads page and search from the query string and the tag from the route slug.
func (h *NotesHandler) ListParamsFromRequest(r *http.Request) models.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	return models.ListParams{
		Page:    page,
		PerPage: h.perPage,
		Search:  q.Get("search"),
		Tag:     TagFromSlug(r.PathValue("slug")),
	}.Normalize()
}

func (h *NotesHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.FetchNotes(r.Context(), h.ListParamsFromRequest(r))
	if err != nil {
		h.logger.Debug("failed to load notes", "error", err)
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, page)
}

func (h *NotesHandler) get(w http.ResponseWriter, r *http.Request) {
	note, err := h.api.FetchNoteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) create(w http.ResponseWriter, r *http.Request) {
	var params models.CreateNoteParams
	err := decodeBody(r, &params, func(r *http.Request) {
		params.Title = r.PostFormValue("title")
		params.Content = r.PostFormValue("content")
		params.Tag = models.Tag(r.PostFormValue("tag"))
	})
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	note, err := h.api.CreateNote(r.Context(), params)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, note)
}

func (h *NotesHandler) update(w http.ResponseWriter, r *http.Request) {
	var params models.UpdateNoteParams
	if err := decodeBody(r, &params, nil); err != nil {
		writeBadRequest(w, err)
		return
	}

	note, err := h.api.UpdateNote(r.Context(), r.PathValue("id"), params)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, note)
}

func (h *NotesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteNote(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Debug("failed to delete note", "id", r.PathValue("id"), "error", err)
		server.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
