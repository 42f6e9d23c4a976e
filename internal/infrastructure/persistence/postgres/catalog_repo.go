package postgres

import (
	"context"
	"fmt"

	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CatalogRepository implements catalog.Repository for PostgreSQL. The catalog
// is read-only from the core's point of view; writes happen in the authoring
// system.
type CatalogRepository struct {
	conn *Connection
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn *Connection) *CatalogRepository {
	return &CatalogRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// ListCourses returns every course ordered by creation time.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]*catalog.Course, error) {
	query := `
		SELECT id, code, slug, title, description, level_tag, total_units,
			   cover_icon, created_at, updated_at
		FROM courses
		ORDER BY created_at ASC, code ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*catalog.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetCourseByCode returns a course by its immutable code.
func (r *CatalogRepository) GetCourseByCode(ctx context.Context, code catalog.CourseCode) (*catalog.Course, error) {
	query := `
		SELECT id, code, slug, title, description, level_tag, total_units,
			   cover_icon, created_at, updated_at
		FROM courses
		WHERE code = $1
	`

	c, err := scanCourse(r.conn.QueryRow(ctx, query, string(code)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %s: %w", code, err)
	}
	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sections and units
// ─────────────────────────────────────────────────────────────────────────────

// ListSections returns a course's sections in display order.
func (r *CatalogRepository) ListSections(ctx context.Context, courseID string) ([]*catalog.Section, error) {
	query := `
		SELECT id, course_id, title, order_index
		FROM sections
		WHERE course_id = $1
		ORDER BY order_index ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []*catalog.Section
	for rows.Next() {
		s := &catalog.Section{}
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// ListUnitsByCourse returns a course's units ordered by section position,
// then unit position within the section.
func (r *CatalogRepository) ListUnitsByCourse(ctx context.Context, courseID string) ([]*catalog.Unit, error) {
	query := `
		SELECT u.id, u.slug, u.section_id, u.course_id, u.course_code, u.title,
			   u.content_type, u.video_url, u.xp_reward, u.free_preview, u.order_index
		FROM units u
		JOIN sections s ON s.id = u.section_id
		WHERE u.course_id = $1
		ORDER BY s.order_index ASC, u.order_index ASC, u.id ASC
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []*catalog.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetUnitBySlug returns a unit by its public identifier.
func (r *CatalogRepository) GetUnitBySlug(ctx context.Context, slug catalog.UnitSlug) (*catalog.Unit, error) {
	query := `
		SELECT id, slug, section_id, course_id, course_code, title,
			   content_type, video_url, xp_reward, free_preview, order_index
		FROM units
		WHERE slug = $1
	`

	u, err := scanUnit(r.conn.QueryRow(ctx, query, string(slug)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to get unit %s: %w", slug, err)
	}
	return u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanCourse(row pgx.Row) (*catalog.Course, error) {
	c := &catalog.Course{}
	var code, levelTag string
	err := row.Scan(
		&c.ID, &code, &c.Slug, &c.Title, &c.Description, &levelTag,
		&c.TotalUnits, &c.CoverIcon, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Code = catalog.CourseCode(code)
	c.LevelTag = catalog.LevelTag(levelTag)
	return c, nil
}

func scanUnit(row pgx.Row) (*catalog.Unit, error) {
	u := &catalog.Unit{}
	var slug, courseCode, contentType string
	var xpReward int
	err := row.Scan(
		&u.ID, &slug, &u.SectionID, &u.CourseID, &courseCode, &u.Title,
		&contentType, &u.VideoURL, &xpReward, &u.FreePreview, &u.OrderIndex,
	)
	if err != nil {
		return nil, err
	}
	u.Slug = catalog.UnitSlug(slug)
	u.CourseCode = catalog.CourseCode(courseCode)
	u.Type = catalog.ContentType(contentType)
	u.XPReward = catalog.XPReward(xpReward)
	return u, nil
}
