package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const publicIDAttempts = 5

// Service exposes catalog reads and instructor-side course authoring.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	CourseDetail(ctx context.Context, slugOrPublicID string) (*CourseDetail, error)

	CreateCourse(ctx context.Context, instructorID uuid.UUID, input CreateCourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, instructorID uuid.UUID, coursePublicID string, input UpdateCourseInput) (*models.Course, error)

	CreateSection(ctx context.Context, instructorID uuid.UUID, coursePublicID string, input SectionInput) (*models.Section, error)
	UpdateSection(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string, input SectionInput) (*models.Section, error)
	DeleteSection(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string) error

	CreateLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, sectionPublicID string, input LessonInput) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, lessonPublicID string, input LessonInput) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, instructorID uuid.UUID, coursePublicID, lessonPublicID string) error
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// CourseDetail is the full course page payload.
type CourseDetail struct {
	Course     *models.Course    `json:"course"`
	Aggregates *CourseAggregates `json:"aggregates"`
}

// CreateCourseInput carries the fields for a new draft course.
type CreateCourseInput struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	CategorySlug string          `json:"category" validate:"omitempty"`
	Language     string          `json:"language" validate:"omitempty"`
	Level        string          `json:"level" validate:"omitempty"`
}

// UpdateCourseInput patches an existing course. Nil pointers leave the
// column untouched.
type UpdateCourseInput struct {
	Title            *string          `json:"title" validate:"omitempty,max=200"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	CategorySlug     *string          `json:"category"`
	Language         *string          `json:"language"`
	Level            *string          `json:"level"`
	InstructorStatus *string          `json:"instructor_status"`
}

// SectionInput carries the writable section fields.
type SectionInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Position int    `json:"position" validate:"min=0"`
}

// LessonInput carries the writable lesson fields.
type LessonInput struct {
	Title           string  `json:"title" validate:"required,max=200"`
	Description     *string `json:"description"`
	DurationSeconds int     `json:"duration_seconds" validate:"min=0"`
	Preview         bool    `json:"preview"`
	Position        int     `json:"position" validate:"min=0"`
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) ListCourses(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	courses, err := s.repo.ListPublished(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses")
	}
	return courses, nil
}

// CourseDetail resolves a course by slug or short id. Unpublished courses
// stay hidden from the public detail page.
func (s *service) CourseDetail(ctx context.Context, slugOrPublicID string) (*CourseDetail, error) {
	if slugOrPublicID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course identifier required")
	}

	var (
		course *models.Course
		err    error
	)
	if shortid.IsValid(slugOrPublicID) {
		course, err = s.repo.FindCourseByPublicID(ctx, slugOrPublicID)
	} else {
		course, err = s.repo.FindCourseBySlug(ctx, slugOrPublicID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if !course.IsPublished() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
	}

	aggregates, err := s.repo.Aggregates(ctx, course.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course aggregates")
	}
	return &CourseDetail{Course: course, Aggregates: aggregates}, nil
}

// CreateCourse starts a new course in draft on both status axes.
func (s *service) CreateCourse(ctx context.Context, instructorID uuid.UUID, input CreateCourseInput) (*models.Course, error) {
	if instructorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instructor id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course title required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course price cannot be negative")
	}

	instructor, err := s.repo.FindInstructor(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "instructor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load instructor")
	}
	if !instructor.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "instructor account is inactive")
	}

	language := enums.CourseLanguageEnglish
	if input.Language != "" {
		language, err = enums.ParseCourseLanguage(input.Language)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}
	level := enums.CourseLevelBeginner
	if input.Level != "" {
		level, err = enums.ParseCourseLevel(input.Level)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}

	var categoryID *uuid.UUID
	if input.CategorySlug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, input.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		categoryID = &category.ID
	}

	publicID, err := s.freshID(ctx, s.repo.CoursePublicIDExists, "course")
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		PublicID:         publicID,
		CategoryID:       categoryID,
		InstructorID:     instructorID,
		Title:            strings.TrimSpace(input.Title),
		Slug:             slugify(input.Title) + "-" + publicID,
		Description:      input.Description,
		Price:            input.Price,
		Language:         language,
		Level:            level,
		PlatformStatus:   enums.CoursePlatformStatusDraft,
		InstructorStatus: enums.CourseInstructorStatusDraft,
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "course slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create course")
	}
	return course, nil
}

func (s *service) UpdateCourse(ctx context.Context, instructorID uuid.UUID, coursePublicID string, input UpdateCourseInput) (*models.Course, error) {
	course, err := s.loadOwnedCourse(ctx, instructorID, coursePublicID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "course title required")
		}
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "course price cannot be negative")
		}
		fields["price"] = *input.Price
	}
	if input.CategorySlug != nil {
		category, err := s.repo.FindCategoryBySlug(ctx, *input.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		fields["category_id"] = category.ID
	}
	if input.Language != nil {
		language, err := enums.ParseCourseLanguage(*input.Language)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["language"] = language
	}
	if input.Level != nil {
		level, err := enums.ParseCourseLevel(*input.Level)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["level"] = level
	}
	if input.InstructorStatus != nil {
		status, err := enums.ParseCourseInstructorStatus(*input.InstructorStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["instructor_status"] = status
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.UpdateCourse(ctx, course.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update course")
	}

	updated, err := s.repo.FindCourseByPublicID(ctx, coursePublicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload course")
	}
	return updated, nil
}

func (s *service) loadOwnedCourse(ctx context.Context, instructorID uuid.UUID, coursePublicID string) (*models.Course, error) {
	if !shortid.IsValid(coursePublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid course id")
	}
	course, err := s.repo.FindCourseByPublicID(ctx, coursePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if course.InstructorID != instructorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "course belongs to another instructor")
	}
	return course, nil
}

func (s *service) freshID(ctx context.Context, exists func(context.Context, string) (bool, error), kind string) (string, error) {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate "+kind+" id")
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check "+kind+" id")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate "+kind+" id")
}

// slugify lowers the title and collapses runs of non-alphanumerics into
// single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
