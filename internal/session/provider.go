package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
)

// Prober is the part of the backend API the provider needs.
type Prober interface {
	CheckServerSession(ctx context.Context) *models.UserInfo
	GetProfile(ctx context.Context) (*models.User, error)
}

// Provider initializes a [Store] exactly once.
type Provider struct {
	api    Prober
	store  *Store
	logger *log.Logger

	once sync.Once
	done chan struct{}
}

func NewProvider(api Prober, store *Store, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &Provider{api: api, store: store, logger: logger, done: make(chan struct{})}
}

// Store returns the store the provider populates.
func (p *Provider) Store() *Store {
	return p.store
}

// Init probes the session and fills the store. Only the first call does any work; later calls return the
// resulting state immediately.
//
// An authenticated probe loads the profile into the store. A missing session or any failure clears it.
func (p *Provider) Init(ctx context.Context) State {
	p.once.Do(func() {
		defer close(p.done)
		p.init(ctx)
	})
	return p.store.Snapshot()
}

func (p *Provider) init(ctx context.Context) {
	info := p.api.CheckServerSession(ctx)
	if info == nil || !info.IsAuth {
		p.store.Clear()
		return
	}

	user, err := p.api.GetProfile(ctx)
	if err != nil {
		p.logger.Warn("failed to load profile", "error", err)
		p.store.Clear()
		return
	}
	p.store.SetUser(*user)
	p.logger.Debug("session restored", "email", user.Email)
}

// Done is closed once [Provider.Init] has finished.
func (p *Provider) Done() <-chan struct{} {
	return p.done
}

// Loading reports whether initialization is still pending.
func (p *Provider) Loading() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
