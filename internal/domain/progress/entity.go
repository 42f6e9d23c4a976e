// Package progress содержит доменную модель прогресса пользователя по юнитам.
// Машина состояний для пары (userID, unitID) предельно простая:
// NotStarted -> Completed, и Completed - терминальное состояние.
// Других переходов не существует.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATE
// ══════════════════════════════════════════════════════════════════════════════

// State определяет состояние прохождения юнита пользователем.
type State string

const (
	// StateNotStarted - юнит не пройден (записи о прогрессе нет).
	StateNotStarted State = "not_started"
	// StateCompleted - юнит пройден. Состояние терминальное: возврата нет.
	StateCompleted State = "completed"
)

// IsValid проверяет, что состояние корректно.
func (s State) IsValid() bool {
	return s == StateNotStarted || s == StateCompleted
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record представляет факт прохождения юнита пользователем.
// Запись существует только для пройденных юнитов: отсутствие записи
// означает NotStarted.
type Record struct {
	// ID - внутренний уникальный идентификатор записи (UUID).
	ID string

	// UserID - идентификатор пользователя.
	UserID string

	// UnitID - внутренний идентификатор юнита.
	UnitID string

	// CompletedAt - время первого прохождения. Никогда не перезаписывается.
	CompletedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyUserID - пустой идентификатор пользователя.
	ErrEmptyUserID = errors.New("progress: user id is required")

	// ErrEmptyUnitID - пустой идентификатор юнита.
	ErrEmptyUnitID = errors.New("progress: unit id is required")
)

// NewRecord создаёт запись о прохождении с валидацией.
func NewRecord(id, userID, unitID string, completedAt time.Time) (*Record, error) {
	if id == "" {
		return nil, errors.New("progress: record id is required")
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if unitID == "" {
		return nil, ErrEmptyUnitID
	}
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	return &Record{
		ID:          id,
		UserID:      userID,
		UnitID:      unitID,
		CompletedAt: completedAt.UTC(),
	}, nil
}

// String возвращает строковое представление записи для логирования.
func (r *Record) String() string {
	return fmt.Sprintf(
		"Progress{User: %s, Unit: %s, CompletedAt: %s}",
		r.UserID, r.UnitID, r.CompletedAt.Format(time.RFC3339),
	)
}
