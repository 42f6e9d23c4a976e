// Package catalog содержит доменную модель каталога курсов WSA Learning Hub.
// Курсы, секции и юниты создаются внешней системой авторинга и для этого ядра
// являются неизменяемыми входными данными - здесь нет внешних зависимостей.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// CourseCode представляет человекочитаемый код курса (например, "BACKEND_JAVA").
// Код уникален и неизменяем.
type CourseCode string

// IsValid проверяет корректность кода курса.
func (c CourseCode) IsValid() bool {
	s := string(c)
	return len(s) >= 2 && len(s) <= 100 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление кода.
func (c CourseCode) String() string {
	return string(c)
}

// UnitSlug представляет человекочитаемый идентификатор юнита
// (например, "intro-design-principles"). Используется в URL.
type UnitSlug string

// IsValid проверяет корректность идентификатора юнита.
func (u UnitSlug) IsValid() bool {
	s := string(u)
	return len(s) >= 2 && len(s) <= 100 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление идентификатора.
func (u UnitSlug) String() string {
	return string(u)
}

// XPReward представляет награду за прохождение юнита в очках опыта.
type XPReward int

// IsValid проверяет, что награда неотрицательная.
// Ноль допустим: некоторые юниты не дают опыта.
func (x XPReward) IsValid() bool {
	return x >= 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// LevelTag определяет тег сложности курса.
type LevelTag string

const (
	// LevelBeginner - курс для начинающих.
	LevelBeginner LevelTag = "beginner"
	// LevelIntermediate - курс среднего уровня.
	LevelIntermediate LevelTag = "intermediate"
	// LevelAdvanced - курс для продвинутых.
	LevelAdvanced LevelTag = "advanced"
)

// IsValid проверяет, что тег сложности корректен.
func (l LevelTag) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// ContentType определяет тип содержимого юнита.
type ContentType string

const (
	// ContentVideo - видеоурок.
	ContentVideo ContentType = "video"
	// ContentArticle - текстовая статья.
	ContentArticle ContentType = "article"
	// ContentQuiz - проверочный тест.
	ContentQuiz ContentType = "quiz"
)

// IsValid проверяет, что тип содержимого корректен.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentVideo, ContentArticle, ContentQuiz:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Course представляет курс платформы.
type Course struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Code - человекочитаемый код курса, уникальный и неизменяемый.
	Code CourseCode

	// Slug - необязательный URL slug.
	Slug string

	// Title - название курса.
	Title string

	// Description - описание курса.
	Description string

	// LevelTag - тег сложности.
	LevelTag LevelTag

	// TotalUnits - общее число юнитов (производное, кешируется авторингом).
	TotalUnits int

	// CoverIcon - имя иконки или URL обложки для фронтенда.
	CoverIcon string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// Section представляет упорядоченную группу юнитов внутри курса.
// Порядок задаёт последовательность отображения, но не порядок доступа.
type Section struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// CourseID - идентификатор курса-владельца.
	CourseID string

	// Title - название секции.
	Title string

	// OrderIndex - позиция секции внутри курса.
	OrderIndex int
}

// Unit представляет один юнит курса. Юнит принадлежит ровно одной секции.
type Unit struct {
	// ID - внутренний уникальный идентификатор (UUID).
	ID string

	// Slug - человекочитаемый идентификатор юнита (уникальный).
	Slug UnitSlug

	// SectionID - идентификатор секции-владельца.
	SectionID string

	// CourseID - идентификатор курса (денормализовано для быстрых проверок доступа).
	CourseID string

	// CourseCode - код курса (денормализовано для Access Gate).
	CourseCode CourseCode

	// Title - название юнита.
	Title string

	// Type - тип содержимого.
	Type ContentType

	// VideoURL - адрес видео для юнитов типа video.
	VideoURL string

	// XPReward - награда за прохождение.
	XPReward XPReward

	// FreePreview - юнит доступен без владения курсом.
	FreePreview bool

	// OrderIndex - позиция юнита внутри секции.
	OrderIndex int
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidCourseCode - невалидный код курса.
	ErrInvalidCourseCode = errors.New("invalid course code: must be 2-100 chars without whitespace")

	// ErrInvalidUnitSlug - невалидный идентификатор юнита.
	ErrInvalidUnitSlug = errors.New("invalid unit slug: must be 2-100 chars without whitespace")

	// ErrInvalidLevelTag - невалидный тег сложности.
	ErrInvalidLevelTag = errors.New("invalid level tag: must be beginner, intermediate or advanced")

	// ErrInvalidContentType - невалидный тип содержимого.
	ErrInvalidContentType = errors.New("invalid content type: must be video, article or quiz")

	// ErrInvalidXPReward - невалидная награда.
	ErrInvalidXPReward = errors.New("invalid xp reward: must be non-negative")

	// ErrInvalidTitle - невалидное название.
	ErrInvalidTitle = errors.New("invalid title: must be 1-200 chars")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewCourseParams содержит параметры для создания курса.
type NewCourseParams struct {
	ID          string
	Code        CourseCode
	Slug        string
	Title       string
	Description string
	LevelTag    LevelTag
	TotalUnits  int
	CoverIcon   string
}

// NewCourse создаёт курс с валидацией всех полей.
func NewCourse(params NewCourseParams) (*Course, error) {
	if params.ID == "" {
		return nil, errors.New("course id is required")
	}
	if !params.Code.IsValid() {
		return nil, ErrInvalidCourseCode
	}
	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}
	if !params.LevelTag.IsValid() {
		return nil, ErrInvalidLevelTag
	}
	if params.TotalUnits < 0 {
		return nil, errors.New("total units cannot be negative")
	}

	now := time.Now().UTC()

	return &Course{
		ID:          params.ID,
		Code:        params.Code,
		Slug:        params.Slug,
		Title:       title,
		Description: params.Description,
		LevelTag:    params.LevelTag,
		TotalUnits:  params.TotalUnits,
		CoverIcon:   params.CoverIcon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewUnitParams содержит параметры для создания юнита.
type NewUnitParams struct {
	ID          string
	Slug        UnitSlug
	SectionID   string
	CourseID    string
	CourseCode  CourseCode
	Title       string
	Type        ContentType
	VideoURL    string
	XPReward    XPReward
	FreePreview bool
	OrderIndex  int
}

// NewUnit создаёт юнит с валидацией всех полей.
func NewUnit(params NewUnitParams) (*Unit, error) {
	if params.ID == "" {
		return nil, errors.New("unit id is required")
	}
	if !params.Slug.IsValid() {
		return nil, ErrInvalidUnitSlug
	}
	if !params.CourseCode.IsValid() {
		return nil, ErrInvalidCourseCode
	}
	title := strings.TrimSpace(params.Title)
	if len(title) == 0 || len(title) > 200 {
		return nil, ErrInvalidTitle
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidContentType
	}
	if !params.XPReward.IsValid() {
		return nil, ErrInvalidXPReward
	}
	if params.OrderIndex < 0 {
		return nil, errors.New("order index cannot be negative")
	}

	return &Unit{
		ID:          params.ID,
		Slug:        params.Slug,
		SectionID:   params.SectionID,
		CourseID:    params.CourseID,
		CourseCode:  params.CourseCode,
		Title:       title,
		Type:        params.Type,
		VideoURL:    params.VideoURL,
		XPReward:    params.XPReward,
		FreePreview: params.FreePreview,
		OrderIndex:  params.OrderIndex,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// HasVideo возвращает true, если у юнита есть видео.
func (u *Unit) HasVideo() bool {
	return u.Type == ContentVideo && u.VideoURL != ""
}

// String возвращает строковое представление юнита для логирования.
func (u *Unit) String() string {
	return fmt.Sprintf(
		"Unit{Slug: %s, Course: %s, Type: %s, XP: %d, Preview: %t}",
		u.Slug, u.CourseCode, u.Type, u.XPReward, u.FreePreview,
	)
}

// Clone создаёт копию юнита.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// String возвращает строковое представление курса для логирования.
func (c *Course) String() string {
	return fmt.Sprintf(
		"Course{Code: %s, Title: %s, Level: %s, Units: %d}",
		c.Code, c.Title, c.LevelTag, c.TotalUnits,
	)
}

// Clone создаёт копию курса.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
