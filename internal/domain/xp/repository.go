package xp

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Начисление при прохождении юнита идёт не через этот интерфейс, а через
// progress.Store: там оно атомарно связано с записью прогресса.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения и создания XP-счетов.
type Repository interface {
	// GetByUserID возвращает счёт пользователя.
	// Возвращает shared.ErrAccountNotFound, если счёта нет.
	GetByUserID(ctx context.Context, userID string) (*Account, error)

	// Create создаёт новый счёт.
	// Возвращает shared.ErrAlreadyExists, если счёт уже существует.
	Create(ctx context.Context, account *Account) error

	// List возвращает снапшот всех счетов для построения рейтинга.
	// Чтение консистентно в пределах счёта, но не между счетами:
	// конкурентные обновления других пользователей допустимы.
	List(ctx context.Context) ([]*Account, error)
}
