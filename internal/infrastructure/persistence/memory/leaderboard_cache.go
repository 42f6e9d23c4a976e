package memory

import (
	"context"
	"sync"

	"github.com/naluwan/wsa/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardCache implements leaderboard.Cache in memory. It exists so the
// rebuild path works the same with and without Redis.
type LeaderboardCache struct {
	mu    sync.RWMutex
	views map[leaderboard.View][]leaderboard.Entry
}

// NewLeaderboardCache creates an empty in-memory leaderboard cache.
func NewLeaderboardCache() *LeaderboardCache {
	return &LeaderboardCache{views: make(map[leaderboard.View][]leaderboard.Entry)}
}

// GetTop returns the first limit rows of the cached ranking.
func (c *LeaderboardCache) GetTop(ctx context.Context, view leaderboard.View, limit int) ([]leaderboard.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.views[view]
	if !ok || len(entries) == 0 {
		return nil, leaderboard.ErrCacheEmpty
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := make([]leaderboard.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Store replaces the cached ranking for a view.
func (c *LeaderboardCache) Store(ctx context.Context, view leaderboard.View, entries []leaderboard.Entry) error {
	cp := make([]leaderboard.Entry, len(entries))
	copy(cp, entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view] = cp
	return nil
}

// Invalidate drops the cached ranking for a view.
func (c *LeaderboardCache) Invalidate(ctx context.Context, view leaderboard.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, view)
	return nil
}
