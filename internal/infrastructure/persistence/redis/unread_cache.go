package redis

import (
	"context"
	"errors"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNREAD COUNT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// UnreadCountCache caches per-user unread notification counters. The
// store count stays authoritative; a miss or a Redis failure falls back
// to a store query, so all methods here degrade to "not cached".
type UnreadCountCache struct {
	cache *Cache
}

// NewUnreadCountCache creates a new UnreadCountCache.
func NewUnreadCountCache(cache *Cache) *UnreadCountCache {
	return &UnreadCountCache{cache: cache}
}

func unreadKey(userID string) string {
	return PrefixUnread + userID
}

// Get returns the cached unread count for a user.
// The second return value reports whether the count was cached.
func (u *UnreadCountCache) Get(ctx context.Context, userID string) (int, bool) {
	count, err := u.cache.GetInt(ctx, unreadKey(userID))
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set caches the unread count for a user.
func (u *UnreadCountCache) Set(ctx context.Context, userID string, count int) error {
	return u.cache.SetInt(ctx, unreadKey(userID), count, TTLUnreadCount)
}

// Invalidate drops the cached count. Called after any write that changes
// the user's notification set.
func (u *UnreadCountCache) Invalidate(ctx context.Context, userID string) error {
	err := u.cache.Delete(ctx, unreadKey(userID))
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}
