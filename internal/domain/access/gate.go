// Package access содержит Access Gate - чистую доменную логику проверки
// доступа пользователя к юниту курса. Решение зависит только от владения
// курсом и флага бесплатного превью; здесь нет внешних зависимостей и
// никакого глобального состояния.
package access

import (
	"context"

	"github.com/naluwan/wsa/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITLEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// EntitlementSet представляет множество кодов курсов, которыми владеет
// пользователь. Владение бинарно: частичных или истекающих прав нет.
type EntitlementSet map[catalog.CourseCode]struct{}

// NewEntitlementSet создаёт множество прав из списка кодов курсов.
func NewEntitlementSet(codes ...catalog.CourseCode) EntitlementSet {
	set := make(EntitlementSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Owns возвращает true, если пользователь владеет курсом.
func (e EntitlementSet) Owns(code catalog.CourseCode) bool {
	_, ok := e[code]
	return ok
}

// Codes возвращает коды курсов множества (порядок не определён).
func (e EntitlementSet) Codes() []catalog.CourseCode {
	codes := make([]catalog.CourseCode, 0, len(e))
	for code := range e {
		codes = append(codes, code)
	}
	return codes
}

// EntitlementStore поставляет права пользователей. Принадлежит внешней системе
// (оплата курсов) и для этого ядра доступен только на чтение.
type EntitlementStore interface {
	// GetEntitlements возвращает множество курсов, которыми владеет пользователь.
	// Для неизвестного пользователя возвращает пустое множество, не ошибку.
	GetEntitlements(ctx context.Context, userID string) (EntitlementSet, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCESS GATE
// ══════════════════════════════════════════════════════════════════════════════

// Reason объясняет решение Access Gate.
type Reason string

const (
	// ReasonOwned - доступ разрешён через владение курсом.
	ReasonOwned Reason = "owned"
	// ReasonFreePreview - доступ разрешён через бесплатное превью.
	ReasonFreePreview Reason = "free_preview"
	// ReasonNotOwned - доступ запрещён: пользователь не владеет курсом.
	ReasonNotOwned Reason = "not_owned"
)

// Decision представляет результат проверки доступа.
type Decision struct {
	// Granted - разрешён ли доступ.
	Granted bool

	// Reason - причина решения.
	Reason Reason
}

// CanAccess решает, может ли пользователь с данными правами просматривать юнит.
// Чистая функция своих аргументов: granted = unit.FreePreview OR owns(course).
// Владение проверяется первым: владелец курса получает причину Owned даже для
// превью-юнитов.
func CanAccess(unit *catalog.Unit, ents EntitlementSet) Decision {
	if ents.Owns(unit.CourseCode) {
		return Decision{Granted: true, Reason: ReasonOwned}
	}
	if unit.FreePreview {
		return Decision{Granted: true, Reason: ReasonFreePreview}
	}
	return Decision{Granted: false, Reason: ReasonNotOwned}
}
