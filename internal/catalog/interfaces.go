package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// CourseFilter narrows the published course listing.
type CourseFilter struct {
	Search       string
	CategorySlug string
	Level        string
	Language     string
	Featured     bool
}

// CourseAggregates are the rollups shown on a course detail page.
type CourseAggregates struct {
	AverageRating        float64
	RatingCount          int64
	TotalLectures        int64
	TotalDurationSeconds int64
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	ListPublished(ctx context.Context, filter CourseFilter) ([]models.Course, error)
	FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error)
	FindCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, courseID uuid.UUID, fields map[string]any) error
	CoursePublicIDExists(ctx context.Context, publicID string) (bool, error)
	Aggregates(ctx context.Context, courseID uuid.UUID) (*CourseAggregates, error)

	FindInstructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error)

	CreateSection(ctx context.Context, section *models.Section) error
	UpdateSection(ctx context.Context, sectionID uuid.UUID, fields map[string]any) error
	DeleteSection(ctx context.Context, sectionID uuid.UUID) error
	FindSectionByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Section, error)
	SectionPublicIDExists(ctx context.Context, publicID string) (bool, error)

	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lessonID uuid.UUID, fields map[string]any) error
	DeleteLesson(ctx context.Context, lessonID uuid.UUID) error
	FindLessonByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Lesson, error)
	LessonPublicIDExists(ctx context.Context, publicID string) (bool, error)
}
