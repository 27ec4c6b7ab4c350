package services

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/notehub/internal/models"
	"github.com/desertthunder/notehub/internal/shared"
)

// Fallback messages used when the backend does not supply one.
const (
	msgLoginFailed       = "Login failed"
	msgInvalidLogin      = "Invalid email or password"
	msgRegisterFailed    = "Registration failed"
	msgUserExists        = "A user with this email already exists"
	msgLogoutFailed      = "Logout failed"
	msgRefreshFailed     = "Failed to refresh session"
	msgSessionInvalid    = "Session is invalid"
	msgProfileLoad       = "Failed to load profile"
	msgProfileUpdate     = "Failed to update profile"
	msgNotesLoad         = "Failed to load notes"
	msgNoteLoad          = "Failed to load note"
	msgNoteCreate        = "Failed to create note"
	msgNoteUpdate        = "Failed to update note"
	msgNoteDelete        = "Failed to delete note"
	msgNoRefreshToken    = "No refresh token available"
	msgMissingIdentifier = "Note id is required"
)

// API exposes the backend operations. Whether it behaves as the interactive (cookie jar) module or
// the server-side (forwarded cookies) module depends only on the [Client] it wraps.
type API struct {
	client *Client
}

// NewAPI wraps an existing [Client].
func NewAPI(client *Client) *API {
	return &API{client: client}
}

// NewBrowserAPI builds the interactive module. Cookies travel through jar, like a credentialed browser session.
func NewBrowserAPI(baseURL string, timeout time.Duration, jar http.CookieJar) *API {
	return NewAPI(NewClient(baseURL, NewHTTPClient(timeout, jar), AmbientCredentials{}))
}

// NewServerAPI builds the server-side module. Auth is forwarded from the cookies stored with [WithRequestCookies].
func NewServerAPI(baseURL string, timeout time.Duration) *API {
	return NewAPI(NewClient(baseURL, NewHTTPClient(timeout, nil), ForwardedCredentials{}))
}

// Client returns the wrapped [Client].
func (a *API) Client() *Client {
	return a.client
}

// Login signs in. A 401 yields a dedicated message.
func (a *API) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var user models.User
	if err := a.client.do(ctx, http.MethodPost, "/auth/login", nil, creds, &user); err != nil {
		if hasStatus(err, http.StatusUnauthorized) {
			return nil, &AuthError{Code: http.StatusUnauthorized, Message: msgInvalidLogin, Err: err}
		}
		return nil, wrapError(err, msgLoginFailed)
	}
	return &user, nil
}

// Register creates an account. A 409 yields a dedicated message.
func (a *API) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var user models.User
	if err := a.client.do(ctx, http.MethodPost, "/auth/register", nil, creds, &user); err != nil {
		if hasStatus(err, http.StatusConflict) {
			return nil, &AuthError{Code: http.StatusConflict, Message: msgUserExists, Err: err}
		}
		return nil, wrapError(err, msgRegisterFailed)
	}
	return &user, nil
}

func (a *API) Logout(ctx context.Context) error {
	if err := a.client.do(ctx, http.MethodPost, "/auth/logout", nil, struct{}{}, nil); err != nil {
		return wrapError(err, msgLogoutFailed)
	}
	return nil
}

// RefreshSession exchanges refreshToken for new session cookies, which arrive via Set-Cookie.
func (a *API) RefreshSession(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return &AuthError{Code: http.StatusUnauthorized, Message: msgNoRefreshToken, Err: shared.ErrNoRefreshToken}
	}

	body := struct {
		RefreshToken string `json:"refreshToken"`
	}{refreshToken}
	if err := a.client.do(ctx, http.MethodPost, "/auth/refresh", nil, body, nil); err != nil {
		return wrapError(err, msgRefreshFailed)
	}
	return nil
}

func (a *API) CheckSession(ctx context.Context) (*models.UserInfo, error) {
	var info models.UserInfo
	if err := a.client.do(ctx, http.MethodGet, "/auth/session", nil, nil, &info); err != nil {
		return nil, wrapError(err, msgSessionInvalid)
	}
	return &info, nil
}

// CheckServerSession is the session probe. Every failure yields nil, since a missing session is normal.
func (a *API) CheckServerSession(ctx context.Context) *models.UserInfo {
	info, err := a.CheckSession(ctx)
	if err != nil {
		return nil
	}
	return info
}

func (a *API) GetProfile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.client.do(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, wrapError(err, msgProfileLoad)
	}
	return &user, nil
}

func (a *API) UpdateProfile(ctx context.Context, params models.UpdateProfileParams) (*models.User, error) {
	if err := params.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var user models.User
	if err := a.client.do(ctx, http.MethodPatch, "/users/me", nil, params, &user); err != nil {
		return nil, wrapError(err, msgProfileUpdate)
	}
	return &user, nil
}

// FetchNotes lists one page of notes. See [models.ListParams.Query] for how parameters are sent.
func (a *API) FetchNotes(ctx context.Context, params models.ListParams) (*models.NotesPage, error) {
	var page models.NotesPage
	if err := a.client.do(ctx, http.MethodGet, "/notes", params.Query(), nil, &page); err != nil {
		return nil, wrapError(err, msgNotesLoad)
	}
	if page.Notes == nil {
		page.Notes = []models.Note{}
	}
	return &page, nil
}

func (a *API) FetchNoteByID(ctx context.Context, id string) (*models.Note, error) {
	if id == "" {
		return nil, &AuthError{Code: http.StatusBadRequest, Message: msgMissingIdentifier, Err: shared.ErrMissingArgument}
	}

	var note models.Note
	if err := a.client.do(ctx, http.MethodGet, notePath(id), nil, nil, &note); err != nil {
		return nil, wrapError(err, msgNoteLoad)
	}
	return &note, nil
}

func (a *API) CreateNote(ctx context.Context, params models.CreateNoteParams) (*models.Note, error) {
	if err := params.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var note models.Note
	if err := a.client.do(ctx, http.MethodPost, "/notes", nil, params, &note); err != nil {
		return nil, wrapError(err, msgNoteCreate)
	}
	return &note, nil
}

func (a *API) UpdateNote(ctx context.Context, id string, params models.UpdateNoteParams) (*models.Note, error) {
	if id == "" {
		return nil, &AuthError{Code: http.StatusBadRequest, Message: msgMissingIdentifier, Err: shared.ErrMissingArgument}
	}
	if err := params.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	var note models.Note
	if err := a.client.do(ctx, http.MethodPatch, notePath(id), nil, params, &note); err != nil {
		return nil, wrapError(err, msgNoteUpdate)
	}
	return &note, nil
}

func (a *API) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return &AuthError{Code: http.StatusBadRequest, Message: msgMissingIdentifier, Err: shared.ErrMissingArgument}
	}
	if err := a.client.do(ctx, http.MethodDelete, notePath(id), nil, nil, nil); err != nil {
		return wrapError(err, msgNoteDelete)
	}
	return nil
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}
