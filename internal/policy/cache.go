package policy

import (
	"context"
	"sync"
	"time"

	"github.com/opscore/support-sim/internal/models"
	"github.com/rs/zerolog"
)

const DefaultTTL = time.Hour

type cacheEntry struct {
	doc       *models.PolicyDocument
	fetchedAt time.Time
}

// CachedStore fronts another Store with a per-title expiring cache. A fetch
// failure or unknown title yields the hardcoded default policy, logged as a
// warning; the caller always receives a usable document.
type CachedStore struct {
	backend Store
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry

	logger *zerolog.Logger
}

func NewCachedStore(backend Store, ttl time.Duration, logger *zerolog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedStore{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		logger:  logger,
	}
}

// Fetch returns the cached document when it is fresh, otherwise refetches.
// Never returns nil.
func (c *CachedStore) Fetch(ctx context.Context, title string) (*models.PolicyDocument, error) {
	c.mu.Lock()
	entry, ok := c.entries[title]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.doc, nil
	}

	doc, err := c.backend.Fetch(ctx, title)
	if err != nil {
		c.logger.Warn().Err(err).Str("title", title).
			Msg("policy fetch failed, using default policy")
		return DefaultPolicy(), nil
	}
	if doc == nil {
		c.logger.Warn().Str("title", title).
			Msg("policy not found, using default policy")
		doc = DefaultPolicy()
	}

	c.mu.Lock()
	c.entries[title] = cacheEntry{doc: doc, fetchedAt: c.now()}
	c.mu.Unlock()

	return doc, nil
}
