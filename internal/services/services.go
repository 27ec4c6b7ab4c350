package services

import (
	"context"

	"github.com/desertthunder/notehub/internal/models"
)

// AuthService covers account and session operations.
type AuthService interface {
	// Login signs in with email and password. Session cookies arrive via Set-Cookie.
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)

	// Register creates an account and signs it in.
	Register(ctx context.Context, creds models.Credentials) (*models.User, error)

	Logout(ctx context.Context) error

	// RefreshSession exchanges a refresh token for new session cookies.
	RefreshSession(ctx context.Context, refreshToken string) error

	// CheckSession reports whether the current credentials are authenticated.
	CheckSession(ctx context.Context) (*models.UserInfo, error)

	// CheckServerSession is [AuthService.CheckSession] with every failure mapped to nil.
	CheckServerSession(ctx context.Context) *models.UserInfo
}

// ProfileService reads and edits the signed-in user.
type ProfileService interface {
	GetProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, params models.UpdateProfileParams) (*models.User, error)
}

// NotesService lists and edits notes.
type NotesService interface {
	FetchNotes(ctx context.Context, params models.ListParams) (*models.NotesPage, error)
	FetchNoteByID(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, params models.CreateNoteParams) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, params models.UpdateNoteParams) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// Service is everything the backend offers. [*API] implements it in both browser and server mode.
type Service interface {
	AuthService
	ProfileService
	NotesService
}

var _ Service = (*API)(nil)
