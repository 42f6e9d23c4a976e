// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"

	"github.com/naluwan/wsa/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSES QUERY
// Возвращает список всех курсов платформы для страницы каталога.
// ══════════════════════════════════════════════════════════════════════════════

// CourseDTO - DTO курса для внешнего интерфейса.
type CourseDTO struct {
	// ID - внутренний идентификатор курса.
	ID string `json:"id"`

	// Code - код курса.
	Code string `json:"code"`

	// Title - название курса.
	Title string `json:"title"`

	// Description - описание курса.
	Description string `json:"description"`

	// LevelTag - тег сложности: beginner, intermediate, advanced.
	LevelTag string `json:"levelTag"`

	// TotalUnits - общее число юнитов.
	TotalUnits int `json:"totalUnits"`

	// CoverIcon - иконка обложки.
	CoverIcon string `json:"coverIcon"`
}

// GetCoursesHandler обрабатывает запрос списка курсов.
type GetCoursesHandler struct {
	catalogRepo catalog.Repository
}

// NewGetCoursesHandler создаёт новый обработчик.
func NewGetCoursesHandler(catalogRepo catalog.Repository) *GetCoursesHandler {
	return &GetCoursesHandler{catalogRepo: catalogRepo}
}

// Handle возвращает все курсы платформы.
func (h *GetCoursesHandler) Handle(ctx context.Context) ([]CourseDTO, error) {
	courses, err := h.catalogRepo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]CourseDTO, 0, len(courses))
	for _, course := range courses {
		dtos = append(dtos, courseToDTO(course))
	}
	return dtos, nil
}

// courseToDTO преобразует курс в DTO.
func courseToDTO(course *catalog.Course) CourseDTO {
	return CourseDTO{
		ID:          course.ID,
		Code:        string(course.Code),
		Title:       course.Title,
		Description: course.Description,
		LevelTag:    string(course.LevelTag),
		TotalUnits:  course.TotalUnits,
		CoverIcon:   course.CoverIcon,
	}
}
