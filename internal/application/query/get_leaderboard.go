package query

import (
	"context"
	"errors"
	"time"

	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает рейтинг пользователей по суммарному либо недельному опыту.
// Сначала пробует кеш; при пустом или отключённом кеше строит рейтинг от
// свежего снапшота счетов. Сам агрегатор никогда не кеширует результат.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса рейтинга.
type GetLeaderboardQuery struct {
	// View - разрез рейтинга: total или weekly.
	View leaderboard.View

	// Limit - количество записей (по умолчанию 50, максимум 100).
	Limit int
}

// Validate проверяет и нормализует параметры запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if !q.View.IsValid() {
		return errors.New("get_leaderboard: view must be total or weekly")
	}
	if q.Limit < 0 {
		return errors.New("get_leaderboard: limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// LeaderboardEntryDTO - DTO строки рейтинга.
type LeaderboardEntryDTO struct {
	// Rank - позиция в рейтинге, начиная с 1.
	Rank int `json:"rank"`

	// UserID - идентификатор пользователя.
	UserID string `json:"userId"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"displayName"`

	// AvatarURL - адрес аватара (null, если не задан).
	AvatarURL *string `json:"avatarUrl"`

	// Level - уровень пользователя.
	Level int `json:"level"`

	// TotalXP - суммарный опыт.
	TotalXP int `json:"totalXp"`

	// WeeklyXP - опыт текущей недели.
	WeeklyXP int `json:"weeklyXp"`
}

// GetLeaderboardHandler обрабатывает запросы рейтинга.
type GetLeaderboardHandler struct {
	accounts xp.Repository
	cache    leaderboard.Cache
	anchor   timeutil.WeekAnchor
	clock    timeutil.Clock
}

// NewGetLeaderboardHandler создаёт новый обработчик. Кеш может быть nil -
// тогда каждый запрос строит рейтинг от снапшота счетов.
func NewGetLeaderboardHandler(
	accounts xp.Repository,
	cache leaderboard.Cache,
	anchor timeutil.WeekAnchor,
	clock timeutil.Clock,
) *GetLeaderboardHandler {
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &GetLeaderboardHandler{
		accounts: accounts,
		cache:    cache,
		anchor:   anchor,
		clock:    clock,
	}
}

// Handle возвращает рейтинг для запрошенного разреза.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) ([]LeaderboardEntryDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	// Кеш - оптимизация, а не источник истины: при пустом кеше или любой
	// его ошибке деградируем до прямого снапшота счетов.
	if h.cache != nil {
		entries, err := h.cache.GetTop(ctx, q.View, q.Limit)
		if err == nil && len(entries) > 0 {
			return entriesToDTO(entries), nil
		}
	}

	entries, err := h.Compute(ctx, q.View, h.clock.Now())
	if err != nil {
		return nil, err
	}
	return entriesToDTO(leaderboard.Top(entries, q.Limit)), nil
}

// Compute строит полный рейтинг от свежего снапшота счетов.
// Используется и обработчиком запроса, и задачей перестроения кеша.
func (h *GetLeaderboardHandler) Compute(ctx context.Context, view leaderboard.View, now time.Time) ([]leaderboard.Entry, error) {
	accounts, err := h.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Rank(accounts, view, h.anchor, now), nil
}

// entriesToDTO преобразует строки рейтинга в DTO.
func entriesToDTO(entries []leaderboard.Entry) []LeaderboardEntryDTO {
	dtos := make([]LeaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		var avatar *string
		if e.AvatarURL != "" {
			url := e.AvatarURL
			avatar = &url
		}
		dtos = append(dtos, LeaderboardEntryDTO{
			Rank:        e.Rank,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			AvatarURL:   avatar,
			Level:       e.Level,
			TotalXP:     e.TotalXP,
			WeeklyXP:    e.WeeklyXP,
		})
	}
	return dtos
}
