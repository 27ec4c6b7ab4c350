// package models defines the data model for the notes web front-end
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Tag is a fixed category label attached to a [Note].
type Tag string

const (
	TagTodo     Tag = "Todo"
	TagWork     Tag = "Work"
	TagPersonal Tag = "Personal"
	TagMeeting  Tag = "Meeting"
	TagShopping Tag = "Shopping"

	// TagAll is the "no tag filter" sentinel. It is never a note's tag.
	TagAll Tag = "All"
)

const (
	MaxTitleLength   = 50
	MaxContentLength = 500
)

var tagOptions = []Tag{TagTodo, TagWork, TagPersonal, TagMeeting, TagShopping}

// TagOptions returns the closed set of note tags in display order.
func TagOptions() []Tag {
	out := make([]Tag, len(tagOptions))
	copy(out, tagOptions)
	return out
}

// Valid reports whether t belongs to the closed set of note tags.
func (t Tag) Valid() bool {
	for _, opt := range tagOptions {
		if t == opt {
			return true
		}
	}
	return false
}

// IsAll reports whether t is empty or the [TagAll] sentinel.
func (t Tag) IsAll() bool {
	return t == "" || strings.EqualFold(string(t), string(TagAll))
}

func (t Tag) String() string { return string(t) }

// ParseTag maps case-insensitive input to its canonical [Tag].
//
// "all" maps to [TagAll]; anything outside the closed set is an error.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(TagAll)) {
		return TagAll, nil
	}
	for _, opt := range tagOptions {
		if strings.EqualFold(s, string(opt)) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// Note is a single note owned by the backend.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       Tag       `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotesPage is one page of notes as returned by GET /notes.
type NotesPage struct {
	Notes      []Note `json:"notes"`
	TotalPages int    `json:"totalPages"`
}

// User is the profile of the signed-in user.
type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UserInfo is the session-check payload.
type UserInfo struct {
	IsAuth bool  `json:"isAuth"`
	User   *User `json:"user,omitempty"`
}

// Credentials are sent to the login and register endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// CreateNoteParams is the body of POST /notes.
type CreateNoteParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     Tag    `json:"tag"`
}

// Validate checks the title, content and tag constraints.
func (p CreateNoteParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLength {
		return fmt.Errorf("content must be at most %d characters", MaxContentLength)
	}
	if !p.Tag.Valid() {
		return fmt.Errorf("invalid tag %q", p.Tag)
	}
	return nil
}

// UpdateNoteParams is the body of PATCH /notes/:id. Nil fields are left unchanged.
type UpdateNoteParams struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Tag     *Tag    `json:"tag,omitempty"`
}

func (p UpdateNoteParams) Validate() error {
	if p.Title == nil && p.Content == nil && p.Tag == nil {
		return fmt.Errorf("nothing to update")
	}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return fmt.Errorf("title is required")
		}
		if utf8.RuneCountInString(*p.Title) > MaxTitleLength {
			return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
		}
	}
	if p.Content != nil && utf8.RuneCountInString(*p.Content) > MaxContentLength {
		return fmt.Errorf("content must be at most %d characters", MaxContentLength)
	}
	if p.Tag != nil && !p.Tag.Valid() {
		return fmt.Errorf("invalid tag %q", *p.Tag)
	}
	return nil
}

// UpdateProfileParams is the body of PATCH /users/me.
type UpdateProfileParams struct {
	Username string `json:"username"`
}

func (p UpdateProfileParams) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Validator is implemented by request bodies that can be checked before sending.
type Validator interface {
	Validate() error
}
