package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/naluwan/wsa/internal/domain/leaderboard"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// cachedEntry is the JSON shape stored in Redis.
type cachedEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Level       int    `json:"level"`
	TotalXP     int    `json:"total_xp"`
	WeeklyXP    int    `json:"weekly_xp"`
}

// LeaderboardCache implements leaderboard.Cache on Redis.
//
// Each view is stored as a single JSON list under its own key. Entries are
// already ranked, so a read is one GET plus a decode; the list is small
// (top accounts only) and replaced wholesale on every rebuild.
type LeaderboardCache struct {
	client *Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a leaderboard cache. A zero TTL keeps entries
// until the next rebuild overwrites them.
func NewLeaderboardCache(client *Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

func viewKey(view leaderboard.View) string {
	return PrefixLeaderboard + string(view)
}

// GetTop returns the first limit rows of the cached ranking.
func (c *LeaderboardCache) GetTop(ctx context.Context, view leaderboard.View, limit int) ([]leaderboard.Entry, error) {
	raw, err := c.client.rdb.Get(ctx, viewKey(view)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, leaderboard.ErrCacheEmpty
		}
		return nil, fmt.Errorf("leaderboard cache: get failed: %w", err)
	}

	var cached []cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("leaderboard cache: decode failed: %w", err)
	}
	if len(cached) == 0 {
		return nil, leaderboard.ErrCacheEmpty
	}

	if limit > 0 && limit < len(cached) {
		cached = cached[:limit]
	}

	entries := make([]leaderboard.Entry, len(cached))
	for i, e := range cached {
		entries[i] = leaderboard.Entry{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			AvatarURL:   e.AvatarURL,
			Level:       e.Level,
			TotalXP:     e.TotalXP,
			WeeklyXP:    e.WeeklyXP,
		}
	}
	return entries, nil
}

// Store replaces the cached ranking for a view.
func (c *LeaderboardCache) Store(ctx context.Context, view leaderboard.View, entries []leaderboard.Entry) error {
	cached := make([]cachedEntry, len(entries))
	for i, e := range entries {
		cached[i] = cachedEntry{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			AvatarURL:   e.AvatarURL,
			Level:       e.Level,
			TotalXP:     e.TotalXP,
			WeeklyXP:    e.WeeklyXP,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("leaderboard cache: encode failed: %w", err)
	}

	if err := c.client.rdb.Set(ctx, viewKey(view), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("leaderboard cache: set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached ranking for a view.
func (c *LeaderboardCache) Invalidate(ctx context.Context, view leaderboard.View) error {
	if err := c.client.rdb.Del(ctx, viewKey(view)).Err(); err != nil {
		return fmt.Errorf("leaderboard cache: del failed: %w", err)
	}
	return nil
}
