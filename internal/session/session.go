// Package session holds the current user's identity for interactive front-ends and request handlers.
//
// A [Store] moves between two states: Anonymous and Authenticated(user). [Provider] populates it once at startup
// from the backend's session probe.
package session

import (
	"context"
	"sync"

	"github.com/desertthunder/notehub/internal/models"
)

// Status is the session's position in its state machine.
type Status int

const (
	Anonymous Status = iota
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is an immutable snapshot of a [Store].
type State struct {
	status Status
	user   models.User
}

func (s State) Status() Status { return s.status }

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool { return s.status == Authenticated }

// User returns a copy of the signed-in user, or false when anonymous.
func (s State) User() (models.User, bool) {
	return s.user, s.status == Authenticated
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns an anonymous store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetUser moves the store to Authenticated(user).
func (s *Store) SetUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{status: Authenticated, user: user}
}

// Clear returns the store to Anonymous.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

type contextKey int

const (
	infoKey contextKey = iota
	stateKey
)

// WithInfo stores the session info derived for an incoming request.
func WithInfo(ctx context.Context, info *models.UserInfo) context.Context {
	return context.WithValue(ctx, infoKey, info)
}

// InfoFromContext returns the info stored by [WithInfo]. A missing value reads as unauthenticated.
func InfoFromContext(ctx context.Context) models.UserInfo {
	info, _ := ctx.Value(infoKey).(*models.UserInfo)
	if info == nil {
		return models.UserInfo{}
	}
	return *info
}

func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

// FromContext returns the snapshot stored by [WithState], or an anonymous state.
func FromContext(ctx context.Context) State {
	st, _ := ctx.Value(stateKey).(State)
	return st
}
