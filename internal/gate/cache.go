package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver keeps resolved profiles for a TTL. Every invalidation bumps a
// generation, and a profile loaded under an older generation is returned but
// not stored, so a permission change is never masked by a concurrent load.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu         sync.RWMutex
	entries    map[U]cacheEntry
	generation uint64
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[U]cacheEntry),
	}
}

// Resolve returns the cached profile or loads it. Errors are not cached.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	r.mu.RLock()
	entry, ok := r.entries[user]
	gen := r.generation
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.profile, nil
	}

	profile, err := r.inner.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if gen == r.generation {
		r.entries[user] = cacheEntry{profile: profile, expiresAt: r.now().Add(r.ttl)}
	}
	r.mu.Unlock()
	return profile, nil
}

// Invalidate drops one user after their profile assignment changed.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.entries, user)
	r.generation++
	r.mu.Unlock()
}

// InvalidateAll drops every user after a profile's permissions changed.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	clear(r.entries)
	r.generation++
	r.mu.Unlock()
}
