package application

import (
	"sync"
	"time"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/schedule"
)

// sessionCache stores recently resolved sessions per (class, date) so a
// burst of sheet reads for the same day does not re-run schedule resolution
// on every request. Entries are invalidated whenever a class is written.
type sessionCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]sessionCacheEntry
}

type sessionCacheEntry struct {
	sessions  []schedule.ResolvedSession
	expiresAt time.Time
}

func newSessionCache(ttl time.Duration, maxEntries int, now func() time.Time) *sessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if now == nil {
		now = time.Now
	}
	return &sessionCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]sessionCacheEntry),
	}
}

func sessionCacheKey(classID, date string) string {
	return classID + "\x00" + date
}

func (c *sessionCache) Get(key string) ([]schedule.ResolvedSession, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSessions(entry.sessions), true
}

func (c *sessionCache) Store(key string, sessions []schedule.ResolvedSession) {
	if c == nil {
		return
	}
	cloned := cloneSessions(sessions)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = sessionCacheEntry{sessions: cloned, expiresAt: expiry}
}

func (c *sessionCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]sessionCacheEntry)
	c.mu.Unlock()
}

func (c *sessionCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *sessionCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneSessions(sessions []schedule.ResolvedSession) []schedule.ResolvedSession {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]schedule.ResolvedSession, len(sessions))
	copy(out, sessions)
	return out
}
