package http

import (
	"net/http"
	"time"

	"github.com/naluwan/wsa/internal/application/command"
	"github.com/naluwan/wsa/internal/application/query"
	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, checker := range s.deps.HealthCheckers {
		if checker == nil {
			continue
		}
		if err := checker.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", logger.Err(err))
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "A backing dependency is unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.deps.GetCoursesHandler.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	details, err := s.deps.GetCourseHandler.Handle(r.Context(), query.GetCourseQuery{
		UserID: getUserID(r.Context()),
		Code:   catalog.CourseCode(r.PathValue("code")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := s.deps.GetUnitHandler.Handle(r.Context(), query.GetUnitQuery{
		UserID: getUserID(r.Context()),
		Slug:   catalog.UnitSlug(r.PathValue("unitId")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	me, err := s.deps.GetMeHandler.Handle(r.Context(), query.GetMeQuery{
		UserID: getUserID(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// completeUnitUser is the XP account state after a completion, nested under
// the "user" field of the completion response.
type completeUnitUser struct {
	Level    int `json:"level"`
	TotalXP  int `json:"totalXp"`
	WeeklyXP int `json:"weeklyXp"`
}

// completeUnitResponse is the JSON shape of a completion result. Completing
// an already-completed unit is a success with alreadyCompleted=true and
// xpEarned=0, never an error.
type completeUnitResponse struct {
	UnitID           string           `json:"unitId"`
	AlreadyCompleted bool             `json:"alreadyCompleted"`
	XPEarned         int              `json:"xpEarned"`
	LeveledUp        bool             `json:"leveledUp"`
	User             completeUnitUser `json:"user"`
}

func (s *Server) handleCompleteUnit(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.CompleteUnitHandler.Handle(r.Context(), command.CompleteUnitCommand{
		UserID:   getUserID(r.Context()),
		UnitSlug: catalog.UnitSlug(r.PathValue("unitId")),
		At:       time.Now(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completeUnitResponse{
		UnitID:           string(result.UnitSlug),
		AlreadyCompleted: result.AlreadyCompleted,
		XPEarned:         result.XPEarned,
		LeveledUp:        result.LeveledUp,
		User: completeUnitUser{
			Level:    int(result.Account.Level()),
			TotalXP:  int(result.Account.TotalXP),
			WeeklyXP: int(result.Account.WeeklyXP),
		},
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARDS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLeaderboardTotal(w http.ResponseWriter, r *http.Request) {
	s.handleLeaderboard(w, r, leaderboard.ViewTotal)
}

func (s *Server) handleLeaderboardWeekly(w http.ResponseWriter, r *http.Request) {
	s.handleLeaderboard(w, r, leaderboard.ViewWeekly)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request, view leaderboard.View) {
	limit := getQueryParamInt(r, "limit", 0)
	if limit < 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_limit", "limit cannot be negative")
		return
	}

	entries, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), query.GetLeaderboardQuery{
		View:  view,
		Limit: limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeError translates a domain error kind to an HTTP status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsUnauthorized(err):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case shared.IsForbidden(err):
		writeJSONError(w, http.StatusForbidden, "forbidden", "You do not have access to this resource")
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsRetryable(err):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Temporarily unavailable, please retry")
	default:
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
