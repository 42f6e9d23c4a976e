// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"time"

	"github.com/naluwan/wsa/internal/application/query"
	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON UNIT COMPLETED HANDLER
// Обрабатывает событие первого прохождения юнита: перестраивает кеш рейтинга,
// чтобы начисленный опыт появился в лидерборде раньше планового перестроения.
// Обработчик работает в режиме best effort: прохождение уже зафиксировано,
// и сбой кеша не должен его отменять.
// ═══════════════════════════════════════════════════════════════════════════

// OnUnitCompletedHandler обрабатывает событие прохождения юнита.
type OnUnitCompletedHandler struct {
	leaderboards *query.GetLeaderboardHandler
	cache        leaderboard.Cache
	log          *logger.Logger

	// Timeout ограничивает время перестроения кеша из обработчика.
	Timeout time.Duration
}

// NewOnUnitCompletedHandler создаёт новый обработчик.
func NewOnUnitCompletedHandler(
	leaderboards *query.GetLeaderboardHandler,
	cache leaderboard.Cache,
	log *logger.Logger,
) *OnUnitCompletedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnUnitCompletedHandler{
		leaderboards: leaderboards,
		cache:        cache,
		log:          log,
		Timeout:      5 * time.Second,
	}
}

// Handle перестраивает оба разреза кеша рейтинга.
func (h *OnUnitCompletedHandler) Handle(event shared.Event) {
	if h.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
	defer cancel()

	now := time.Now()
	for _, view := range []leaderboard.View{leaderboard.ViewTotal, leaderboard.ViewWeekly} {
		entries, err := h.leaderboards.Compute(ctx, view, now)
		if err != nil {
			h.log.Warn("leaderboard cache refresh skipped",
				logger.String("view", string(view)),
				logger.String("trigger", string(event.EventType())),
				logger.Err(err),
			)
			return
		}
		if err := h.cache.Store(ctx, view, entries); err != nil {
			h.log.Warn("leaderboard cache store failed",
				logger.String("view", string(view)),
				logger.Err(err),
			)
		}
	}
}
