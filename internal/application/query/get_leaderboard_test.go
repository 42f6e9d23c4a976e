package query

import (
	"context"
	"testing"
	"time"

	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/internal/infrastructure/persistence/memory"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = timeutil.NewWeekAnchor(timeutil.DefaultLocation, time.Monday)

func testNow() time.Time {
	return time.Date(2026, time.January, 7, 12, 0, 0, 0, timeutil.DefaultLocation)
}

func seedAccounts(t *testing.T, repo *memory.XPAccountRepository, totals map[string]int) {
	t.Helper()
	for userID, total := range totals {
		account, err := xp.NewAccount(xp.NewAccountParams{
			UserID:      userID,
			DisplayName: "User " + userID,
			Anchor:      testAnchor,
			Now:         testNow(),
		})
		require.NoError(t, err)
		if total > 0 {
			require.NoError(t, account.Credit(xp.XP(total), testAnchor, testNow()))
		}
		require.NoError(t, repo.Create(context.Background(), account))
	}
}

func TestGetLeaderboard_ComputesFromAccountsWithoutCache(t *testing.T) {
	accounts := memory.NewXPAccountRepository()
	seedAccounts(t, accounts, map[string]int{"alice": 300, "bob": 150, "carol": 300})

	h := NewGetLeaderboardHandler(accounts, nil, testAnchor, timeutil.FixedClock{At: testNow()})
	entries, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal})
	require.NoError(t, err)

	require.Len(t, entries, 3)
	// Equal totals break ties by user ID ascending; ranks are dense from 1.
	assert.Equal(t, []string{"alice", "carol", "bob"},
		[]string{entries[0].UserID, entries[1].UserID, entries[2].UserID})
	assert.Equal(t, []int{1, 2, 3},
		[]int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestGetLeaderboard_ServesFromCacheWhenWarm(t *testing.T) {
	accounts := memory.NewXPAccountRepository()
	seedAccounts(t, accounts, map[string]int{"alice": 100})

	cache := memory.NewLeaderboardCache()
	require.NoError(t, cache.Store(context.Background(), leaderboard.ViewTotal, []leaderboard.Entry{
		{Rank: 1, UserID: "cached-user", DisplayName: "Cached", Level: 5, TotalXP: 9000},
	}))

	h := NewGetLeaderboardHandler(accounts, cache, testAnchor, timeutil.FixedClock{At: testNow()})
	entries, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "cached-user", entries[0].UserID)
}

func TestGetLeaderboard_FallsBackToSnapshotOnColdCache(t *testing.T) {
	accounts := memory.NewXPAccountRepository()
	seedAccounts(t, accounts, map[string]int{"alice": 100})

	h := NewGetLeaderboardHandler(accounts, memory.NewLeaderboardCache(), testAnchor, timeutil.FixedClock{At: testNow()})
	entries, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].UserID)
}

func TestGetLeaderboard_WeeklyIgnoresStaleWindows(t *testing.T) {
	accounts := memory.NewXPAccountRepository()
	seedAccounts(t, accounts, map[string]int{"alice": 100, "bob": 200})

	// Two weeks later both weekly balances are stale; totals are unaffected.
	later := testNow().AddDate(0, 0, 14)
	h := NewGetLeaderboardHandler(accounts, nil, testAnchor, timeutil.FixedClock{At: later})

	weekly, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewWeekly})
	require.NoError(t, err)
	for _, e := range weekly {
		assert.Equal(t, 0, e.WeeklyXP)
	}

	total, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal})
	require.NoError(t, err)
	assert.Equal(t, "bob", total[0].UserID)
	assert.Equal(t, 200, total[0].TotalXP)
}

func TestGetLeaderboard_LimitIsClamped(t *testing.T) {
	accounts := memory.NewXPAccountRepository()
	seedAccounts(t, accounts, map[string]int{"alice": 100, "bob": 50})

	h := NewGetLeaderboardHandler(accounts, nil, testAnchor, timeutil.FixedClock{At: testNow()})

	entries, err := h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = h.Handle(context.Background(), GetLeaderboardQuery{View: leaderboard.ViewTotal, Limit: -1})
	assert.Error(t, err)
}
