// Package querycache memoizes backend list queries by key.
//
// Concurrent lookups of the same key share one fetch, resolved values are kept until they go stale, and the most
// recently resolved value of any key stays available as placeholder data while a new key loads.
package querycache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/notehub/internal/models"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is used when a cache is created without one.
const DefaultStaleTime = 30 * time.Second

// NotesPrefix starts every [NotesKey]. Invalidate it after a note is created, updated or deleted.
const NotesPrefix = "notes|"

// NotesKey identifies one notes list query.
type NotesKey struct {
	Search string
	Page   int
	Tag    models.Tag
}

// String renders the key as notes|<search>|<page>|<tag>. An empty tag renders as "All".
func (k NotesKey) String() string {
	tag := k.Tag
	if tag.IsAll() {
		tag = models.TagAll
	}
	var b strings.Builder
	b.WriteString(NotesPrefix)
	b.WriteString(k.Search)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(k.Page))
	b.WriteByte('|')
	b.WriteString(string(tag))
	return b.String()
}

// NotesKeyFor derives the cache key of a list query.
func NotesKeyFor(p models.ListParams) NotesKey {
	p = p.Normalize()
	return NotesKey{Search: p.Search, Page: p.Page, Tag: p.Tag}
}

// Fetcher loads the value for a key on a cache miss.
type Fetcher[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache is safe for concurrent use.
type Cache[V any] struct {
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time

	mu          sync.RWMutex
	entries     map[string]entry[V]
	placeholder *V
}

// New creates a cache whose entries are refetched once older than staleTime.
// A non-positive staleTime uses [DefaultStaleTime].
func New[V any](staleTime time.Duration) *Cache[V] {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Cache[V]{
		staleTime: staleTime,
		now:       time.Now,
		entries:   make(map[string]entry[V]),
	}
}

// Get returns the fresh cached value for key or calls fetch.
//
// Callers waiting on the same key share the in-flight fetch. Errors are not cached.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	if v, ok := c.Peek(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns the cached value for key when present and not stale.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: v, fetchedAt: c.now()}
	c.placeholder = &v
}

// Placeholder returns the most recently resolved value of any key.
func (c *Cache[V]) Placeholder() (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.placeholder == nil {
		var zero V
		return zero, false
	}
	return *c.placeholder, true
}

// Invalidate drops every entry whose key starts with prefix and returns how many were dropped.
// The placeholder is kept.
func (c *Cache[V]) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
