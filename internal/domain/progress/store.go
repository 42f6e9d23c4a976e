package progress

import (
	"context"
	"time"

	"github.com/naluwan/wsa/internal/domain/xp"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE INTERFACE
// Переход NotStarted -> Completed и начисление XP образуют единую атомарную
// операцию с ключом (userID, unitID). Атомарность живёт в хранилище:
// Postgres - транзакция с уникальным ограничением, memory - мьютекс по ключу.
// Глобальной блокировки нет: прохождения разных пользователей независимы.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteParams содержит параметры атомарной операции прохождения.
type CompleteParams struct {
	// RecordID - заранее сгенерированный идентификатор записи (UUID).
	RecordID string

	// UserID - идентификатор пользователя.
	UserID string

	// UnitID - внутренний идентификатор юнита.
	UnitID string

	// XPReward - награда юнита, начисляемая при первом прохождении.
	XPReward int

	// CompletedAt - момент прохождения (и момент начисления XP).
	CompletedAt time.Time
}

// CompleteResult содержит результат атомарной операции прохождения.
type CompleteResult struct {
	// AlreadyCompleted - юнит уже был пройден ранее; начисления не было.
	AlreadyCompleted bool

	// Account - состояние XP-счёта после операции.
	Account *xp.Account
}

// Store определяет контракт хранилища прогресса.
type Store interface {
	// CompleteUnit атомарно записывает прохождение юнита и начисляет XP.
	// Если пара (userID, unitID) уже в состоянии Completed, операция
	// успешна, AlreadyCompleted = true и никаких мутаций не происходит.
	// При конкурентных вызовах для одной пары ровно один из них начисляет XP.
	CompleteUnit(ctx context.Context, params CompleteParams) (*CompleteResult, error)

	// IsCompleted возвращает true, если пользователь прошёл юнит.
	IsCompleted(ctx context.Context, userID, unitID string) (bool, error)

	// CompletedUnitIDs возвращает множество идентификаторов юнитов курса,
	// пройденных пользователем. Используется для пометки isCompleted в
	// списках юнитов.
	CompletedUnitIDs(ctx context.Context, userID string, unitIDs []string) (map[string]bool, error)
}
