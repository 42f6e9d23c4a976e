package xp

import (
	"testing"
	"time"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = timeutil.NewWeekAnchor(timeutil.DefaultLocation, time.Monday)

func at(y int, m time.Month, d, hh int) time.Time {
	return time.Date(y, m, d, hh, 0, 0, 0, timeutil.DefaultLocation)
}

func newTestAccount(t *testing.T, now time.Time) *Account {
	t.Helper()
	account, err := NewAccount(NewAccountParams{
		UserID:      "user-1",
		DisplayName: "Alice",
		Anchor:      testAnchor,
		Now:         now,
	})
	require.NoError(t, err)
	return account
}

// ─────────────────────────────────────────────────────────────────────────────
// Levels
// ─────────────────────────────────────────────────────────────────────────────

func TestCalculateLevel_Thresholds(t *testing.T) {
	tests := []struct {
		total XP
		level Level
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{1000, 5},
		{1750, 6},
		{2750, 7},
		{4000, 8},
		{5500, 9},
		{7499, 9},
		{7500, 10},
		{9999, 10},
		{10000, 11},
		{12500, 12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, CalculateLevel(tt.total), "total=%d", tt.total)
	}
}

func TestCalculateLevel_Monotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for total := XP(1); total <= 20000; total += 37 {
		level := CalculateLevel(total)
		assert.GreaterOrEqual(t, level, prev, "level dropped at total=%d", total)
		prev = level
	}
}

func TestCalculateLevel_NegativeTotal(t *testing.T) {
	assert.Equal(t, Level(1), CalculateLevel(-50))
}

// ─────────────────────────────────────────────────────────────────────────────
// Crediting
// ─────────────────────────────────────────────────────────────────────────────

func TestCredit_AddsToBothBalances(t *testing.T) {
	now := at(2026, time.January, 7, 12)
	account := newTestAccount(t, now)

	require.NoError(t, account.Credit(100, testAnchor, now))

	assert.Equal(t, XP(100), account.TotalXP)
	assert.Equal(t, XP(100), account.WeeklyXP)
	assert.Equal(t, Level(2), account.Level())
}

func TestCredit_ZeroIsLegalNoOp(t *testing.T) {
	now := at(2026, time.January, 7, 12)
	account := newTestAccount(t, now)

	require.NoError(t, account.Credit(0, testAnchor, now))
	assert.Equal(t, XP(0), account.TotalXP)
	assert.Equal(t, XP(0), account.WeeklyXP)
}

func TestCredit_NegativeIsRejectedWithoutMutation(t *testing.T) {
	now := at(2026, time.January, 7, 12)
	account := newTestAccount(t, now)
	require.NoError(t, account.Credit(50, testAnchor, now))

	err := account.Credit(-10, testAnchor, now)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	// The error carries the validation kind so the HTTP boundary answers 400.
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, XP(50), account.TotalXP)
	assert.Equal(t, XP(50), account.WeeklyXP)
}

// ─────────────────────────────────────────────────────────────────────────────
// Weekly rollover
// ─────────────────────────────────────────────────────────────────────────────

func TestCredit_RolloverBeforeCredit(t *testing.T) {
	// Credit on Wednesday, then again the following Tuesday: the second
	// credit lands in a fresh window.
	wednesday := at(2026, time.January, 7, 12)
	account := newTestAccount(t, wednesday)
	require.NoError(t, account.Credit(120, testAnchor, wednesday))

	nextTuesday := at(2026, time.January, 13, 9)
	require.NoError(t, account.Credit(30, testAnchor, nextTuesday))

	assert.Equal(t, XP(150), account.TotalXP, "total is never reset")
	assert.Equal(t, XP(30), account.WeeklyXP, "weekly window rolled over")
	assert.Equal(t, testAnchor.StartOfWeek(nextTuesday), account.WeekStart)
}

func TestRollover_SkipsMultipleWeeks(t *testing.T) {
	start := at(2026, time.January, 7, 12)
	account := newTestAccount(t, start)
	require.NoError(t, account.Credit(500, testAnchor, start))

	// Three weeks later: rollover jumps straight to the current window.
	later := at(2026, time.January, 28, 8)
	rolled := account.Rollover(testAnchor, later)

	assert.True(t, rolled)
	assert.Equal(t, XP(0), account.WeeklyXP)
	assert.Equal(t, testAnchor.StartOfWeek(later), account.WeekStart)
	assert.Equal(t, XP(500), account.TotalXP)
}

func TestRollover_NoopInsideWindow(t *testing.T) {
	start := at(2026, time.January, 7, 12)
	account := newTestAccount(t, start)
	require.NoError(t, account.Credit(200, testAnchor, start))

	rolled := account.Rollover(testAnchor, at(2026, time.January, 11, 23))
	assert.False(t, rolled)
	assert.Equal(t, XP(200), account.WeeklyXP)
}

func TestEffectiveWeeklyXP_ReadDoesNotMutate(t *testing.T) {
	start := at(2026, time.January, 7, 12)
	account := newTestAccount(t, start)
	require.NoError(t, account.Credit(200, testAnchor, start))

	// Reading after the window expired reports zero but leaves the stored
	// balance alone until the next credit.
	later := at(2026, time.January, 20, 10)
	assert.Equal(t, XP(0), account.EffectiveWeeklyXP(testAnchor, later))
	assert.Equal(t, XP(200), account.WeeklyXP)

	// Inside the window the stored value is reported as-is.
	assert.Equal(t, XP(200), account.EffectiveWeeklyXP(testAnchor, at(2026, time.January, 9, 10)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory
// ─────────────────────────────────────────────────────────────────────────────

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount(NewAccountParams{DisplayName: "Alice", Anchor: testAnchor})
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = NewAccount(NewAccountParams{UserID: "user-1", Anchor: testAnchor})
	assert.ErrorIs(t, err, ErrInvalidDisplayName)
}

func TestNewAccount_StartsAtLevelOne(t *testing.T) {
	account := newTestAccount(t, at(2026, time.January, 7, 12))
	assert.Equal(t, XP(0), account.TotalXP)
	assert.Equal(t, Level(1), account.Level())
}
