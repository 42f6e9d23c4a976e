package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = timeutil.NewWeekAnchor(timeutil.DefaultLocation, time.Monday)

func testNow() time.Time {
	return time.Date(2026, time.January, 7, 12, 0, 0, 0, timeutil.DefaultLocation)
}

func newStoreWithAccount(t *testing.T, userID string) (*ProgressStore, *XPAccountRepository) {
	t.Helper()
	accounts := NewXPAccountRepository()
	account, err := xp.NewAccount(xp.NewAccountParams{
		UserID:      userID,
		DisplayName: "User " + userID,
		Anchor:      testAnchor,
		Now:         testNow(),
	})
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), account))
	return NewProgressStore(accounts, testAnchor), accounts
}

func completeParams(userID, unitID string, reward int) progress.CompleteParams {
	return progress.CompleteParams{
		RecordID:    "record-" + userID + "-" + unitID,
		UserID:      userID,
		UnitID:      unitID,
		XPReward:    reward,
		CompletedAt: testNow(),
	}
}

func TestCompleteUnit_FailedCreditLeavesNoRecord(t *testing.T) {
	// No account exists, so the credit fails; the completion must stay
	// retryable and never be visible as completed.
	store := NewProgressStore(NewXPAccountRepository(), testAnchor)

	_, err := store.CompleteUnit(context.Background(), completeParams("ghost", "unit-1", 100))
	require.ErrorIs(t, err, shared.ErrAccountNotFound)

	done, err := store.IsCompleted(context.Background(), "ghost", "unit-1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCompleteUnit_LosingRacerObservesCredit(t *testing.T) {
	store, _ := newStoreWithAccount(t, "user-1")

	const workers = 12
	var wg sync.WaitGroup
	results := make(chan *progress.CompleteResult, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.CompleteUnit(context.Background(), completeParams("user-1", "unit-1", 100))
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	firsts := 0
	for result := range results {
		if !result.AlreadyCompleted {
			firsts++
		}
		// No racer may see the account before the winning credit landed.
		assert.Equal(t, xp.XP(100), result.Account.TotalXP)
	}
	assert.Equal(t, 1, firsts)
}

func TestCompleteUnit_RepeatLeavesRecordAndBalanceUntouched(t *testing.T) {
	store, accounts := newStoreWithAccount(t, "user-1")

	first, err := store.CompleteUnit(context.Background(), completeParams("user-1", "unit-1", 100))
	require.NoError(t, err)
	require.False(t, first.AlreadyCompleted)

	repeat, err := store.CompleteUnit(context.Background(), completeParams("user-1", "unit-1", 100))
	require.NoError(t, err)
	assert.True(t, repeat.AlreadyCompleted)
	assert.Equal(t, xp.XP(100), repeat.Account.TotalXP)

	account, err := accounts.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, xp.XP(100), account.TotalXP)
}
