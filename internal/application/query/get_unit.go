package query

import (
	"context"
	"fmt"

	"github.com/naluwan/wsa/internal/domain/access"
	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET UNIT QUERY
// Returns unit details together with the Access Gate decision for the caller.
// The gate result is reported, not enforced: a denied caller still sees the
// unit metadata, only the player page decides what to render.
// ══════════════════════════════════════════════════════════════════════════════

// GetUnitQuery contains the parameters of the unit details request.
type GetUnitQuery struct {
	// UserID is the resolved caller identity.
	UserID string

	// Slug is the unit identifier from the URL.
	Slug catalog.UnitSlug
}

// Validate validates the query.
func (q GetUnitQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("catalog", "GetUnit", shared.ErrUnauthorized, "no caller identity")
	}
	if !q.Slug.IsValid() {
		return shared.ErrUnitNotFound
	}
	return nil
}

// UnitDTO is the unit details response.
type UnitDTO struct {
	// ID is the internal unit identifier.
	ID string `json:"id"`

	// UnitID is the human-readable unit identifier.
	UnitID string `json:"unitId"`

	// CourseCode is the owning course code.
	CourseCode string `json:"courseCode"`

	// CourseTitle is the owning course title.
	CourseTitle string `json:"courseTitle"`

	// Title is the unit title.
	Title string `json:"title"`

	// Type is the content type.
	Type string `json:"type"`

	// VideoURL is the video address for video units.
	VideoURL string `json:"videoUrl"`

	// XPReward is the XP granted on first completion.
	XPReward int `json:"xpReward"`

	// IsFreePreview indicates the unit is viewable without ownership.
	IsFreePreview bool `json:"isFreePreview"`

	// CanAccess is the Access Gate decision for the caller.
	CanAccess bool `json:"canAccess"`

	// IsCompleted indicates the caller has completed this unit.
	IsCompleted bool `json:"isCompleted"`
}

// GetUnitHandler handles unit details requests.
type GetUnitHandler struct {
	catalogRepo  catalog.Repository
	entitlements access.EntitlementStore
	store        progress.Store
}

// NewGetUnitHandler creates a new GetUnitHandler.
func NewGetUnitHandler(
	catalogRepo catalog.Repository,
	entitlements access.EntitlementStore,
	store progress.Store,
) *GetUnitHandler {
	return &GetUnitHandler{
		catalogRepo:  catalogRepo,
		entitlements: entitlements,
		store:        store,
	}
}

// Handle returns the unit details for the caller.
func (h *GetUnitHandler) Handle(ctx context.Context, q GetUnitQuery) (*UnitDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	unit, err := h.catalogRepo.GetUnitBySlug(ctx, q.Slug)
	if err != nil {
		return nil, err
	}

	course, err := h.catalogRepo.GetCourseByCode(ctx, unit.CourseCode)
	if err != nil {
		return nil, err
	}

	ents, err := h.entitlements.GetEntitlements(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_unit: failed to load entitlements: %w", err)
	}
	decision := access.CanAccess(unit, ents)

	isCompleted, err := h.store.IsCompleted(ctx, q.UserID, unit.ID)
	if err != nil {
		return nil, fmt.Errorf("get_unit: failed to load progress: %w", err)
	}

	return &UnitDTO{
		ID:            unit.ID,
		UnitID:        string(unit.Slug),
		CourseCode:    string(unit.CourseCode),
		CourseTitle:   course.Title,
		Title:         unit.Title,
		Type:          string(unit.Type),
		VideoURL:      unit.VideoURL,
		XPReward:      int(unit.XPReward),
		IsFreePreview: unit.FreePreview,
		CanAccess:     decision.Granted,
		IsCompleted:   isCompleted,
	}, nil
}
