package catalog

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Каталог принадлежит внешней системе авторинга: это ядро только читает.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения каталога.
type Repository interface {
	// ListCourses возвращает все курсы платформы.
	ListCourses(ctx context.Context) ([]*Course, error)

	// GetCourseByCode возвращает курс по его коду.
	// Возвращает shared.ErrCourseNotFound, если код неизвестен.
	GetCourseByCode(ctx context.Context, code CourseCode) (*Course, error)

	// ListSections возвращает секции курса в порядке OrderIndex.
	ListSections(ctx context.Context, courseID string) ([]*Section, error)

	// ListUnitsByCourse возвращает юниты курса, упорядоченные по порядку
	// секций, затем по OrderIndex юнита.
	ListUnitsByCourse(ctx context.Context, courseID string) ([]*Unit, error)

	// GetUnitBySlug возвращает юнит по человекочитаемому идентификатору.
	// Возвращает shared.ErrUnitNotFound, если идентификатор неизвестен.
	GetUnitBySlug(ctx context.Context, slug UnitSlug) (*Unit, error)
}
