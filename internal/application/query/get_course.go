package query

import (
	"context"
	"fmt"

	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE QUERY
// Returns course details with its unit list, each unit carrying a per-caller
// completion flag. Unknown course codes surface as NotFound.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseQuery contains the parameters of the course details request.
type GetCourseQuery struct {
	// UserID is the resolved caller identity.
	UserID string

	// Code is the course code from the URL.
	Code catalog.CourseCode
}

// Validate validates the query.
func (q GetCourseQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("catalog", "GetCourse", shared.ErrUnauthorized, "no caller identity")
	}
	if !q.Code.IsValid() {
		return shared.ErrCourseNotFound
	}
	return nil
}

// UnitSummaryDTO describes one unit inside a course details response.
type UnitSummaryDTO struct {
	// ID is the internal unit identifier.
	ID string `json:"id"`

	// UnitID is the human-readable unit identifier.
	UnitID string `json:"unitId"`

	// Title is the unit title.
	Title string `json:"title"`

	// Type is the content type: video, article, quiz.
	Type string `json:"type"`

	// OrderIndex is the unit's position within its section.
	OrderIndex int `json:"orderIndex"`

	// IsCompleted indicates the caller has completed this unit.
	IsCompleted bool `json:"isCompleted"`
}

// CourseDetailsDTO is the course details response.
type CourseDetailsDTO struct {
	CourseDTO
	Units []UnitSummaryDTO `json:"units"`
}

// GetCourseHandler handles course details requests.
type GetCourseHandler struct {
	catalogRepo catalog.Repository
	store       progress.Store
}

// NewGetCourseHandler creates a new GetCourseHandler.
func NewGetCourseHandler(catalogRepo catalog.Repository, store progress.Store) *GetCourseHandler {
	return &GetCourseHandler{catalogRepo: catalogRepo, store: store}
}

// Handle returns the course with its ordered unit list.
func (h *GetCourseHandler) Handle(ctx context.Context, q GetCourseQuery) (*CourseDetailsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	course, err := h.catalogRepo.GetCourseByCode(ctx, q.Code)
	if err != nil {
		return nil, err
	}

	units, err := h.catalogRepo.ListUnitsByCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("get_course: failed to list units: %w", err)
	}

	unitIDs := make([]string, 0, len(units))
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.ID)
	}

	completed, err := h.store.CompletedUnitIDs(ctx, q.UserID, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("get_course: failed to load progress: %w", err)
	}

	dto := &CourseDetailsDTO{
		CourseDTO: courseToDTO(course),
		Units:     make([]UnitSummaryDTO, 0, len(units)),
	}
	for _, unit := range units {
		dto.Units = append(dto.Units, UnitSummaryDTO{
			ID:          unit.ID,
			UnitID:      string(unit.Slug),
			Title:       unit.Title,
			Type:        string(unit.Type),
			OrderIndex:  unit.OrderIndex,
			IsCompleted: completed[unit.ID],
		})
	}
	return dto, nil
}
