// Package memory implements in-memory persistence for the WSA learning hub.
// It backs local development without PostgreSQL and the application-layer
// tests. All implementations are safe for concurrent use and honor the same
// contracts as their postgres counterparts, including exactly-once crediting
// in the progress store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements catalog.Repository in memory.
type CatalogRepository struct {
	mu       sync.RWMutex
	courses  map[string]*catalog.Course
	byCode   map[catalog.CourseCode]string
	sections map[string]*catalog.Section
	units    map[string]*catalog.Unit
	bySlug   map[catalog.UnitSlug]string
}

// NewCatalogRepository creates an empty in-memory catalog.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		courses:  make(map[string]*catalog.Course),
		byCode:   make(map[catalog.CourseCode]string),
		sections: make(map[string]*catalog.Section),
		units:    make(map[string]*catalog.Unit),
		bySlug:   make(map[catalog.UnitSlug]string),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Seeding (used by dev mode and tests; the real catalog is authored externally)
// ─────────────────────────────────────────────────────────────────────────────

// AddCourse registers a course.
func (r *CatalogRepository) AddCourse(c *catalog.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = c.Clone()
	r.byCode[c.Code] = c.ID
}

// AddSection registers a section.
func (r *CatalogRepository) AddSection(s *catalog.Section) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sections[s.ID] = &cp
}

// AddUnit registers a unit.
func (r *CatalogRepository) AddUnit(u *catalog.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.ID] = u.Clone()
	r.bySlug[u.Slug] = u.ID
}

// ─────────────────────────────────────────────────────────────────────────────
// catalog.Repository
// ─────────────────────────────────────────────────────────────────────────────

// ListCourses returns all courses ordered by code.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]*catalog.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courses := make([]*catalog.Course, 0, len(r.courses))
	for _, c := range r.courses {
		courses = append(courses, c.Clone())
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].Code < courses[j].Code
	})
	return courses, nil
}

// GetCourseByCode returns a course by its code.
func (r *CatalogRepository) GetCourseByCode(ctx context.Context, code catalog.CourseCode) (*catalog.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return r.courses[id].Clone(), nil
}

// ListSections returns a course's sections in display order.
func (r *CatalogRepository) ListSections(ctx context.Context, courseID string) ([]*catalog.Section, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sections []*catalog.Section
	for _, s := range r.sections {
		if s.CourseID == courseID {
			cp := *s
			sections = append(sections, &cp)
		}
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].OrderIndex != sections[j].OrderIndex {
			return sections[i].OrderIndex < sections[j].OrderIndex
		}
		return sections[i].ID < sections[j].ID
	})
	return sections, nil
}

// ListUnitsByCourse returns a course's units ordered by section position,
// then unit position.
func (r *CatalogRepository) ListUnitsByCourse(ctx context.Context, courseID string) ([]*catalog.Unit, error) {
	sections, err := r.ListSections(ctx, courseID)
	if err != nil {
		return nil, err
	}
	sectionOrder := make(map[string]int, len(sections))
	for i, s := range sections {
		sectionOrder[s.ID] = i
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var units []*catalog.Unit
	for _, u := range r.units {
		if u.CourseID == courseID {
			units = append(units, u.Clone())
		}
	}
	sort.Slice(units, func(i, j int) bool {
		si, sj := sectionOrder[units[i].SectionID], sectionOrder[units[j].SectionID]
		if si != sj {
			return si < sj
		}
		if units[i].OrderIndex != units[j].OrderIndex {
			return units[i].OrderIndex < units[j].OrderIndex
		}
		return units[i].ID < units[j].ID
	})
	return units, nil
}

// GetUnitBySlug returns a unit by its public identifier.
func (r *CatalogRepository) GetUnitBySlug(ctx context.Context, slug catalog.UnitSlug) (*catalog.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, shared.ErrUnitNotFound
	}
	return r.units[id].Clone(), nil
}
