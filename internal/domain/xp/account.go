// Package xp содержит доменную модель счёта опыта (XP Ledger).
// Счёт append-only: totalXp монотонно не убывает, дебетов не существует.
// Недельное окно - фиксированные 7-дневные интервалы, привязанные к началу
// недели в настроенной таймзоне; перенос окна ленивый и выполняется при
// начислении и при чтении, фоновых задач для него не нужно.
package xp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP представляет очки опыта.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Level представляет уровень пользователя, производный от totalXp.
type Level int

// levelThresholds - минимальный totalXp для каждого уровня начиная со второго.
// Уровень 1 соответствует нулю опыта. Функция ступенчатая и монотонная:
// больший totalXp никогда не даёт меньший уровень.
var levelThresholds = []XP{100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500}

// levelStep - шаг порога после последнего значения таблицы.
const levelStep XP = 2500

// CalculateLevel вычисляет уровень по totalXp.
func CalculateLevel(total XP) Level {
	if total < 0 {
		return 1
	}
	level := Level(1)
	for _, threshold := range levelThresholds {
		if total < threshold {
			return level
		}
		level++
	}
	// За последним порогом таблицы каждый levelStep добавляет уровень.
	extra := (total - levelThresholds[len(levelThresholds)-1]) / levelStep
	return level + Level(extra)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// Account представляет XP-счёт пользователя.
// Уровень намеренно не хранится: он всегда вычисляется из TotalXP,
// чтобы значения не могли разойтись.
type Account struct {
	// UserID - идентификатор пользователя (UUID в строковом формате).
	UserID string

	// DisplayName - отображаемое имя для лидерборда.
	DisplayName string

	// AvatarURL - адрес аватара (может быть пустым).
	AvatarURL string

	// TotalXP - суммарный опыт. Монотонно не убывает.
	TotalXP XP

	// WeeklyXP - опыт, начисленный в текущем недельном окне.
	WeeklyXP XP

	// WeekStart - начало текущего недельного окна счёта.
	WeekStart time.Time

	// CreatedAt - время создания счёта.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNegativeAmount - попытка начислить отрицательную сумму.
	// Несёт kind shared.ErrNegativeValue, чтобы граница HTTP отвечала 400.
	ErrNegativeAmount = shared.ErrNegativeCredit

	// ErrEmptyUserID - пустой идентификатор пользователя.
	ErrEmptyUserID = errors.New("xp: user id is required")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("xp: display name must be 1-100 chars")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewAccountParams содержит параметры для создания счёта.
type NewAccountParams struct {
	UserID      string
	DisplayName string
	AvatarURL   string
	Anchor      timeutil.WeekAnchor
	Now         time.Time
}

// NewAccount создаёт новый счёт с нулевым балансом.
func NewAccount(params NewAccountParams) (*Account, error) {
	if params.UserID == "" {
		return nil, ErrEmptyUserID
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if len(displayName) == 0 || len(displayName) > 100 {
		return nil, ErrInvalidDisplayName
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &Account{
		UserID:      params.UserID,
		DisplayName: displayName,
		AvatarURL:   params.AvatarURL,
		TotalXP:     0,
		WeeklyXP:    0,
		WeekStart:   params.Anchor.StartOfWeek(now),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Level возвращает текущий уровень счёта.
func (a *Account) Level() Level {
	return CalculateLevel(a.TotalXP)
}

// Rollover переносит недельное окно, если момент at уже за его границей.
// WeeklyXP обнуляется, граница окна продвигается к окну, содержащему at.
// TotalXP перенос не затрагивает. Возвращает true, если перенос был.
func (a *Account) Rollover(anchor timeutil.WeekAnchor, at time.Time) bool {
	if a.WeekStart.IsZero() {
		a.WeekStart = anchor.StartOfWeek(at)
		return false
	}
	if !anchor.WindowExpired(a.WeekStart, at) {
		return false
	}
	a.WeeklyXP = 0
	a.WeekStart = anchor.StartOfWeek(at)
	return true
}

// Credit начисляет amount очков опыта моментом at.
// Отрицательная сумма - ошибка без мутаций; ноль - легальная no-op запись.
// Если at за границей текущего недельного окна, сначала выполняется перенос.
func (a *Account) Credit(amount XP, anchor timeutil.WeekAnchor, at time.Time) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	a.Rollover(anchor, at)
	a.TotalXP += amount
	a.WeeklyXP += amount
	a.UpdatedAt = at.UTC()
	return nil
}

// EffectiveWeeklyXP возвращает недельный опыт на момент now без мутации счёта:
// если окно истекло, счёт корректно отчитывается нулём ещё до первого
// начисления новой недели.
func (a *Account) EffectiveWeeklyXP(anchor timeutil.WeekAnchor, now time.Time) XP {
	if a.WeekStart.IsZero() || anchor.WindowExpired(a.WeekStart, now) {
		return 0
	}
	return a.WeeklyXP
}

// String возвращает строковое представление счёта для логирования.
func (a *Account) String() string {
	return fmt.Sprintf(
		"Account{User: %s, Total: %d, Weekly: %d, Level: %d}",
		a.UserID, a.TotalXP, a.WeeklyXP, a.Level(),
	)
}

// Clone создаёт копию счёта.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
