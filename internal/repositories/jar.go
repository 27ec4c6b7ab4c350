package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"
)

// PersistentJar is an in-memory [cookiejar.Jar] mirrored to a [CookieRepository], so a CLI session survives
// between invocations.
type PersistentJar struct {
	repo   *CookieRepository
	logger *log.Logger

	mu  sync.RWMutex
	jar *cookiejar.Jar
}

var _ http.CookieJar = (*PersistentJar)(nil)

func newCookieJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// NewPersistentJar drops expired rows and loads the remaining cookies into memory.
func NewPersistentJar(ctx context.Context, repo *CookieRepository, logger *log.Logger) (*PersistentJar, error) {
	if logger == nil {
		logger = log.Default()
	}

	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	p := &PersistentJar{repo: repo, logger: logger, jar: jar}

	if n, err := repo.DeleteExpired(ctx); err != nil {
		return nil, err
	} else if n > 0 {
		logger.Debug("dropped expired cookies", "count", n)
	}

	hosts, err := repo.Hosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, host := range hosts {
		cookies, err := repo.List(ctx, host)
		if err != nil {
			return nil, err
		}
		byScheme := map[string][]*http.Cookie{}
		for _, c := range cookies {
			scheme := "http"
			if c.Secure {
				scheme = "https"
			}
			byScheme[scheme] = append(byScheme[scheme], c)
		}
		for scheme, cs := range byScheme {
			jar.SetCookies(&url.URL{Scheme: scheme, Host: host, Path: "/"}, cs)
		}
	}
	return p, nil
}

// SetCookies stores cookies in memory and writes them through to the repository.
// Persistence failures are logged; the in-memory jar stays authoritative for the process.
func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.mu.RLock()
	p.jar.SetCookies(u, cookies)
	p.mu.RUnlock()

	if err := p.repo.Save(context.Background(), u.Host, cookies); err != nil {
		p.logger.Warn("failed to persist cookies", "host", u.Host, "error", err)
	}
}

func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jar.Cookies(u)
}

// Clear forgets every cookie, in memory and on disk.
func (p *PersistentJar) Clear(ctx context.Context) error {
	jar, err := newCookieJar()
	if err != nil {
		return err
	}
	if err := p.repo.Clear(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.jar = jar
	p.mu.Unlock()
	return nil
}
