package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naluwan/wsa/internal/application/command"
	"github.com/naluwan/wsa/internal/application/query"
	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/internal/infrastructure/persistence/memory"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testAnchor = timeutil.NewWeekAnchor(timeutil.DefaultLocation, time.Monday)

// newTestServer assembles a server over the in-memory persistence stack,
// pre-seeded with one course (a paid unit and a free-preview unit) and two
// users: "alice" owns the course, "bob" does not.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	catalogRepo := memory.NewCatalogRepository()
	entitlements := memory.NewEntitlementStore()
	accounts := memory.NewXPAccountRepository()
	store := memory.NewProgressStore(accounts, testAnchor)

	course, err := catalog.NewCourse(catalog.NewCourseParams{
		ID:       "course-1",
		Code:     "backend-java",
		Title:    "Backend with Java",
		LevelTag: catalog.LevelBeginner,
	})
	require.NoError(t, err)
	catalogRepo.AddCourse(course)
	catalogRepo.AddSection(&catalog.Section{ID: "section-1", CourseID: "course-1", Title: "Basics"})

	paid, err := catalog.NewUnit(catalog.NewUnitParams{
		ID:         "unit-1",
		Slug:       "spring-intro",
		SectionID:  "section-1",
		CourseID:   "course-1",
		CourseCode: "backend-java",
		Title:      "Spring Intro",
		Type:       catalog.ContentVideo,
		XPReward:   100,
	})
	require.NoError(t, err)
	catalogRepo.AddUnit(paid)

	preview, err := catalog.NewUnit(catalog.NewUnitParams{
		ID:          "unit-2",
		Slug:        "what-is-http",
		SectionID:   "section-1",
		CourseID:    "course-1",
		CourseCode:  "backend-java",
		Title:       "What Is HTTP",
		Type:        catalog.ContentArticle,
		XPReward:    30,
		FreePreview: true,
		OrderIndex:  1,
	})
	require.NoError(t, err)
	catalogRepo.AddUnit(preview)

	now := time.Date(2026, time.January, 7, 12, 0, 0, 0, timeutil.DefaultLocation)
	for _, userID := range []string{"alice", "bob"} {
		account, err := xp.NewAccount(xp.NewAccountParams{
			UserID:      userID,
			DisplayName: userID,
			Anchor:      testAnchor,
			Now:         now,
		})
		require.NoError(t, err)
		require.NoError(t, accounts.Create(context.Background(), account))
	}
	entitlements.Grant("alice", "backend-java")

	clock := timeutil.FixedClock{At: now}

	cfg := DefaultConfig()
	cfg.JWTSecret = testSecret
	cfg.RateLimitPerMinute = 0
	cfg.EnableCORS = false

	return NewServer(cfg, Dependencies{
		CompleteUnitHandler:   command.NewCompleteUnitHandler(catalogRepo, entitlements, store, nil, testAnchor, clock),
		GetCoursesHandler:     query.NewGetCoursesHandler(catalogRepo),
		GetCourseHandler:      query.NewGetCourseHandler(catalogRepo, store),
		GetUnitHandler:        query.NewGetUnitHandler(catalogRepo, entitlements, store),
		GetLeaderboardHandler: query.NewGetLeaderboardHandler(accounts, nil, testAnchor, clock),
		GetMeHandler:          query.NewGetMeHandler(accounts, testAnchor, clock),
	})
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, srv *Server, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/healthz", "/ready"} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Catalog routes
// ─────────────────────────────────────────────────────────────────────────────

func TestListCourses_Anonymous(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []map[string]interface{}
	decodeBody(t, rec, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, "backend-java", courses[0]["code"])
}

func TestGetCourse_UnknownCodeIs404(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/courses/no-such-course", "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_found", body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestGetCourse_MarksCompletedUnits(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/courses/backend-java", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	var details struct {
		Units []struct {
			UnitID      string `json:"unitId"`
			IsCompleted bool   `json:"isCompleted"`
		} `json:"units"`
	}
	decodeBody(t, rec, &details)
	require.Len(t, details.Units, 2)

	completed := map[string]bool{}
	for _, u := range details.Units {
		completed[u.UnitID] = u.IsCompleted
	}
	assert.True(t, completed["spring-intro"])
	assert.False(t, completed["what-is-http"])
}

func TestGetUnit_AccessFlagFollowsOwnership(t *testing.T) {
	srv := newTestServer(t)

	// Owner sees the paid unit as accessible.
	rec := doRequest(t, srv, http.MethodGet, "/api/units/spring-intro", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	var unit map[string]interface{}
	decodeBody(t, rec, &unit)
	assert.Equal(t, true, unit["canAccess"])

	// Non-owner does not, but still gets the metadata.
	rec = doRequest(t, srv, http.MethodGet, "/api/units/spring-intro", "bob")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &unit)
	assert.Equal(t, false, unit["canAccess"])

	// Free preview is accessible to anyone.
	rec = doRequest(t, srv, http.MethodGet, "/api/units/what-is-http", "bob")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &unit)
	assert.Equal(t, true, unit["canAccess"])
}

// ─────────────────────────────────────────────────────────────────────────────
// Identity
// ─────────────────────────────────────────────────────────────────────────────

func TestIdentity_MissingTokenIs401OnProtectedRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/user/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentity_InvalidTokenIsRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentity_MalformedHeaderIsRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetMe_ReturnsProfile(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/user/me", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	var me map[string]interface{}
	decodeBody(t, rec, &me)
	assert.Equal(t, "alice", me["userId"])
	assert.Equal(t, float64(1), me["level"])
	assert.Equal(t, float64(0), me["totalXp"])
}

// ─────────────────────────────────────────────────────────────────────────────
// Completion
// ─────────────────────────────────────────────────────────────────────────────

func TestCompleteUnit_HappyPathAndRepeat(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp completeUnitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "spring-intro", resp.UnitID)
	assert.False(t, resp.AlreadyCompleted)
	assert.Equal(t, 100, resp.XPEarned)
	assert.Equal(t, 100, resp.User.TotalXP)
	assert.Equal(t, 100, resp.User.WeeklyXP)
	assert.Equal(t, 2, resp.User.Level)
	assert.True(t, resp.LeveledUp)

	// The repeat is still 200, with nothing credited.
	rec = doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.True(t, resp.AlreadyCompleted)
	assert.Equal(t, 0, resp.XPEarned)
	assert.Equal(t, 100, resp.User.TotalXP)
}

func TestCompleteUnit_ResponseNestsAccountUnderUser(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "alice")
	require.Equal(t, http.StatusOK, rec.Code)

	// The account state lives in a nested "user" object, not at the top level.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "unitId")
	require.Contains(t, raw, "xpEarned")
	require.Contains(t, raw, "user")
	assert.NotContains(t, raw, "totalXp")
	assert.NotContains(t, raw, "level")

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(raw["user"], &user))
	assert.Equal(t, float64(100), user["totalXp"])
	assert.Equal(t, float64(100), user["weeklyXp"])
	assert.Equal(t, float64(2), user["level"])
}

func TestCompleteUnit_ForbiddenWithoutOwnership(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "bob")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "forbidden", body.Error)
}

func TestCompleteUnit_FreePreviewForNonOwner(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/what-is-http/complete", "bob")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp completeUnitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 30, resp.XPEarned)
}

func TestCompleteUnit_UnknownUnitIs404(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/no-such-unit/complete", "alice")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Leaderboards
// ─────────────────────────────────────────────────────────────────────────────

func TestLeaderboard_RanksAfterCompletions(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/units/spring-intro/complete", "alice")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, srv, http.MethodPost, "/api/units/what-is-http/complete", "bob")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/leaderboard/total", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]interface{}
	decodeBody(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0]["userId"])
	assert.Equal(t, float64(1), entries[0]["rank"])
	assert.Equal(t, float64(100), entries[0]["totalXp"])
	assert.Equal(t, "bob", entries[1]["userId"])
	assert.Equal(t, float64(2), entries[1]["rank"])
}

func TestLeaderboard_LimitParam(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/leaderboard/weekly?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]interface{}
	decodeBody(t, rec, &entries)
	assert.LessOrEqual(t, len(entries), 1)
}

func TestLeaderboard_NegativeLimitIs400(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/leaderboard/total?limit=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
