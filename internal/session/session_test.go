package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/notehub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	mu          sync.Mutex
	info        *models.UserInfo
	user        *models.User
	profileErr  error
	probeCalls  int
	profileHits int
}

func (f *fakeProber) CheckServerSession(context.Context) *models.UserInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	return f.info
}

func (f *fakeProber) GetProfile(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileHits++
	return f.user, f.profileErr
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestStore(t *testing.T) {
	t.Run("Starts Anonymous", func(t *testing.T) {
		s := NewStore()
		st := s.Snapshot()
		assert.Equal(t, Anonymous, st.Status())
		_, ok := st.User()
		assert.False(t, ok)
	})

	t.Run("SetUser Then Clear", func(t *testing.T) {
		s := NewStore()
		s.SetUser(models.User{Email: "a@b.c", Username: "ann"})

		st := s.Snapshot()
		require.True(t, st.IsAuthenticated())
		u, _ := st.User()
		assert.Equal(t, "ann", u.Username)

		s.Clear()
		assert.False(t, s.Snapshot().IsAuthenticated())
		assert.True(t, st.IsAuthenticated(), "expected earlier snapshot to be unaffected")
	})

	t.Run("Status String", func(t *testing.T) {
		assert.Equal(t, "anonymous", Anonymous.String())
		assert.Equal(t, "authenticated", Authenticated.String())
	})
}

func TestProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Authenticated Session Loads Profile", func(t *testing.T) {
		api := &fakeProber{
			info: &models.UserInfo{IsAuth: true},
			user: &models.User{Email: "a@b.c", Username: "ann"},
		}
		p := NewProvider(api, NewStore(), quietLogger())

		assert.True(t, p.Loading())
		st := p.Init(ctx)
		assert.False(t, p.Loading())

		require.True(t, st.IsAuthenticated())
		u, _ := st.User()
		assert.Equal(t, "a@b.c", u.Email)
	})

	t.Run("Missing Session Clears", func(t *testing.T) {
		api := &fakeProber{}
		store := NewStore()
		store.SetUser(models.User{Email: "stale@b.c"})

		st := NewProvider(api, store, quietLogger()).Init(ctx)
		assert.False(t, st.IsAuthenticated())
		assert.Equal(t, 0, api.profileHits)
	})

	t.Run("Unauthenticated Info Clears Without Profile Call", func(t *testing.T) {
		api := &fakeProber{info: &models.UserInfo{IsAuth: false}}
		st := NewProvider(api, NewStore(), quietLogger()).Init(ctx)

		assert.False(t, st.IsAuthenticated())
		assert.Equal(t, 0, api.profileHits)
	})

	t.Run("Profile Failure Clears", func(t *testing.T) {
		api := &fakeProber{info: &models.UserInfo{IsAuth: true}, profileErr: errors.New("boom")}
		st := NewProvider(api, NewStore(), quietLogger()).Init(ctx)
		assert.False(t, st.IsAuthenticated())
	})

	t.Run("Runs Once", func(t *testing.T) {
		api := &fakeProber{info: &models.UserInfo{IsAuth: true}, user: &models.User{Email: "a@b.c"}}
		p := NewProvider(api, NewStore(), quietLogger())

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.Init(ctx)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, api.probeCalls)
		select {
		case <-p.Done():
		default:
			t.Fatal("expected Done to be closed")
		}
	})
}

func TestContext(t *testing.T) {
	t.Run("Info Round Trip", func(t *testing.T) {
		ctx := WithInfo(context.Background(), &models.UserInfo{IsAuth: true})
		assert.True(t, InfoFromContext(ctx).IsAuth)
	})

	t.Run("Missing Info Is Unauthenticated", func(t *testing.T) {
		assert.False(t, InfoFromContext(context.Background()).IsAuth)
	})

	t.Run("State Defaults To Anonymous", func(t *testing.T) {
		assert.Equal(t, Anonymous, FromContext(context.Background()).Status())
	})
}
