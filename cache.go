package gamenews

import (
	"sync"
	"time"
)

// PostCache is an in-memory cache of the home page's curated sections with
// a TTL. Every post or roster write invalidates it.
type PostCache struct {
	mu      sync.RWMutex
	front   *FrontPage
	fetched time.Time
	ttl     time.Duration
	store   *Store

	featuredLimit int
	semiLimit     int
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration, featuredLimit, semiLimit int) *PostCache {
	return &PostCache{store: s, ttl: ttl, featuredLimit: featuredLimit, semiLimit: semiLimit}
}

func (c *PostCache) valid() bool {
	return c.front != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.front = nil
	c.mu.Unlock()
}

// FrontPage returns the featured and semi-featured sections. It tries a read
// lock first and only takes the write lock when a reload is needed.
func (c *PostCache) FrontPage() (FrontPage, error) {
	c.mu.RLock()
	if c.valid() {
		fp := *c.front
		c.mu.RUnlock()
		return fp, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return *c.front, nil
	}
	fp, err := c.store.FrontPage(c.featuredLimit, c.semiLimit)
	if err != nil {
		return FrontPage{}, err
	}
	c.front = &fp
	c.fetched = time.Now()
	return fp, nil
}
