package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/shared"
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

// fixture bundles the in-memory world a completion runs against.
type fixture struct {
	catalog      *memory.CatalogRepository
	entitlements *memory.EntitlementStore
	accounts     *memory.XPAccountRepository
	handler      *CompleteUnitHandler
	events       *recordingPublisher
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalogRepo := memory.NewCatalogRepository()
	entitlements := memory.NewEntitlementStore()
	accounts := memory.NewXPAccountRepository()
	store := memory.NewProgressStore(accounts, testAnchor)
	events := &recordingPublisher{}

	clock := timeutil.FixedClock{At: testNow()}
	handler := NewCompleteUnitHandler(catalogRepo, entitlements, store, events, testAnchor, clock)

	return &fixture{
		catalog:      catalogRepo,
		entitlements: entitlements,
		accounts:     accounts,
		handler:      handler,
		events:       events,
	}
}

func (f *fixture) seedUnit(t *testing.T, slug string, reward int, preview bool) *catalog.Unit {
	t.Helper()

	course, err := catalog.NewCourse(catalog.NewCourseParams{
		ID:       "course-1",
		Code:     "backend-java",
		Title:    "Backend with Java",
		LevelTag: catalog.LevelBeginner,
	})
	require.NoError(t, err)
	f.catalog.AddCourse(course)

	f.catalog.AddSection(&catalog.Section{ID: "section-1", CourseID: course.ID, Title: "Basics"})

	unit, err := catalog.NewUnit(catalog.NewUnitParams{
		ID:          "unit-" + slug,
		Slug:        catalog.UnitSlug(slug),
		SectionID:   "section-1",
		CourseID:    course.ID,
		CourseCode:  course.Code,
		Title:       "Unit " + slug,
		Type:        catalog.ContentVideo,
		XPReward:    catalog.XPReward(reward),
		FreePreview: preview,
	})
	require.NoError(t, err)
	f.catalog.AddUnit(unit)
	return unit
}

func (f *fixture) seedUser(t *testing.T, userID string, owns bool) {
	t.Helper()

	account, err := xp.NewAccount(xp.NewAccountParams{
		UserID:      userID,
		DisplayName: "User " + userID,
		Anchor:      testAnchor,
		Now:         testNow(),
	})
	require.NoError(t, err)
	require.NoError(t, f.accounts.Create(context.Background(), account))

	if owns {
		f.entitlements.Grant(userID, "backend-java")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Happy path and idempotence
// ─────────────────────────────────────────────────────────────────────────────

func TestCompleteUnit_FirstCompletionCreditsXP(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "intro", 100, false)
	f.seedUser(t, "user-1", true)

	result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{
		UserID:   "user-1",
		UnitSlug: "intro",
	})
	require.NoError(t, err)

	assert.False(t, result.AlreadyCompleted)
	assert.Equal(t, 100, result.XPEarned)
	assert.Equal(t, xp.XP(100), result.Account.TotalXP)
	assert.Equal(t, xp.XP(100), result.Account.WeeklyXP)
	assert.True(t, result.LeveledUp, "100 XP crosses the level 2 threshold")

	assert.Len(t, f.events.ofType(shared.EventUnitCompleted), 1)
	assert.Len(t, f.events.ofType(shared.EventXPCredited), 1)
	assert.Len(t, f.events.ofType(shared.EventLevelUp), 1)
}

func TestCompleteUnit_RepeatIsSuccessWithoutCredit(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "intro", 100, false)
	f.seedUser(t, "user-1", true)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "intro"})
	require.NoError(t, err)

	// The repeat is a success, not an error, and credits nothing.
	result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "intro"})
	require.NoError(t, err)

	assert.True(t, result.AlreadyCompleted)
	assert.Equal(t, 0, result.XPEarned)
	assert.Equal(t, xp.XP(100), result.Account.TotalXP)

	// No second batch of events.
	assert.Len(t, f.events.ofType(shared.EventUnitCompleted), 1)
}

type outcome struct {
	earned int
	total  xp.XP
	err    error
}

func TestCompleteUnit_ConcurrentCallsCreditExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "intro", 100, false)
	f.seedUser(t, "user-1", true)

	const workers = 16
	var wg sync.WaitGroup
	outcomes := make(chan outcome, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{
				UserID:   "user-1",
				UnitSlug: "intro",
			})
			if err != nil {
				outcomes <- outcome{err: err}
				return
			}
			outcomes <- outcome{earned: result.XPEarned, total: result.Account.TotalXP}
		}()
	}
	wg.Wait()
	close(outcomes)

	total := 0
	winners := 0
	for o := range outcomes {
		require.NoError(t, o.err)
		total += o.earned
		if o.earned > 0 {
			winners++
		}
		// Every racer, winner or not, sees the account after the one credit.
		assert.Equal(t, xp.XP(100), o.total)
	}
	assert.Equal(t, 1, winners, "exactly one call wins the credit")
	assert.Equal(t, 100, total)

	account, err := f.accounts.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, xp.XP(100), account.TotalXP)
}

func TestCompleteUnit_DistinctUnitsEachCredit(t *testing.T) {
	f := newFixture(t)
	unit1 := f.seedUnit(t, "intro", 100, false)

	unit2, err := catalog.NewUnit(catalog.NewUnitParams{
		ID:         "unit-deep-dive",
		Slug:       "deep-dive",
		SectionID:  unit1.SectionID,
		CourseID:   unit1.CourseID,
		CourseCode: unit1.CourseCode,
		Title:      "Deep Dive",
		Type:       catalog.ContentArticle,
		XPReward:   50,
	})
	require.NoError(t, err)
	f.catalog.AddUnit(unit2)

	f.seedUser(t, "user-1", true)

	_, err = f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "intro"})
	require.NoError(t, err)
	result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "deep-dive"})
	require.NoError(t, err)

	assert.Equal(t, xp.XP(150), result.Account.TotalXP)
}

// ─────────────────────────────────────────────────────────────────────────────
// Gating and errors
// ─────────────────────────────────────────────────────────────────────────────

func TestCompleteUnit_ForbiddenWithoutOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "paid-unit", 100, false)
	f.seedUser(t, "user-1", false)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "paid-unit"})
	require.Error(t, err)
	assert.True(t, shared.IsForbidden(err))

	// Denial performs no mutation.
	account, err := f.accounts.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, xp.XP(0), account.TotalXP)
	assert.Empty(t, f.events.ofType(shared.EventUnitCompleted))
}

func TestCompleteUnit_FreePreviewWithoutOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "preview", 30, true)
	f.seedUser(t, "user-1", false)

	result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "preview"})
	require.NoError(t, err)
	assert.Equal(t, 30, result.XPEarned)
}

func TestCompleteUnit_UnknownSlugIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "user-1", true)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "missing"})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestCompleteUnit_NoIdentityIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "intro", 100, false)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UnitSlug: "intro"})
	require.Error(t, err)
	assert.True(t, shared.IsUnauthorized(err))
}

func TestCompleteUnit_InvalidSlugIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{UserID: "user-1", UnitSlug: "x"})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Weekly window interplay
// ─────────────────────────────────────────────────────────────────────────────

func TestCompleteUnit_CreditAfterWindowRollsOver(t *testing.T) {
	f := newFixture(t)
	f.seedUnit(t, "intro", 100, false)
	f.seedUser(t, "user-1", true)

	_, err := f.handler.Handle(context.Background(), CompleteUnitCommand{
		UserID:   "user-1",
		UnitSlug: "intro",
		At:       testNow(),
	})
	require.NoError(t, err)

	unit2, err := catalog.NewUnit(catalog.NewUnitParams{
		ID:         "unit-next",
		Slug:       "next-week",
		SectionID:  "section-1",
		CourseID:   "course-1",
		CourseCode: "backend-java",
		Title:      "Next Week",
		Type:       catalog.ContentVideo,
		XPReward:   40,
	})
	require.NoError(t, err)
	f.catalog.AddUnit(unit2)

	// Ten days later: a fresh weekly window.
	later := testNow().AddDate(0, 0, 10)
	result, err := f.handler.Handle(context.Background(), CompleteUnitCommand{
		UserID:   "user-1",
		UnitSlug: "next-week",
		At:       later,
	})
	require.NoError(t, err)

	assert.Equal(t, xp.XP(140), result.Account.TotalXP)
	assert.Equal(t, xp.XP(40), result.Account.WeeklyXP)
}
