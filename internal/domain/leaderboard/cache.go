package leaderboard

import (
	"context"
	"errors"
)

// ErrCacheEmpty возвращается кешем, когда готового рейтинга для разреза нет.
// Вызывающая сторона в этом случае строит рейтинг от свежего снапшота счетов.
var ErrCacheEmpty = errors.New("leaderboard: cache is empty")

// Cache хранит заранее построенный рейтинг для быстрого чтения.
// Кеш - оптимизация чтения, не источник истины: Rank всегда пересчитывает
// рейтинг от переданного состояния, кеш лишь хранит результат.
type Cache interface {
	// GetTop возвращает первые limit строк кешированного рейтинга.
	// Возвращает ErrCacheEmpty, если рейтинг ещё не построен.
	GetTop(ctx context.Context, view View, limit int) ([]Entry, error)

	// Store заменяет кешированный рейтинг для разреза.
	Store(ctx context.Context, view View, entries []Entry) error

	// Invalidate сбрасывает кешированный рейтинг для разреза.
	Invalidate(ctx context.Context, view View) error
}
