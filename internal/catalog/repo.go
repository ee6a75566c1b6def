package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("title ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repositoryImpl) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func publishedScope(db *gorm.DB) *gorm.DB {
	return db.Where(
		"platform_status = ? AND instructor_status = ?",
		enums.CoursePlatformStatusPublished,
		enums.CourseInstructorStatusPublished,
	)
}

func (r *repositoryImpl) ListPublished(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	query := r.db.WithContext(ctx).
		Scopes(publishedScope).
		Preload("Category").
		Preload("Instructor")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = courses.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repositoryImpl) FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.position ASC, sections.created_at ASC")
		}).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC, lessons.created_at ASC")
		}).
		Where("public_id = ?", publicID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) FindCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.position ASC, sections.created_at ASC")
		}).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC, lessons.created_at ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *repositoryImpl) UpdateCourse(ctx context.Context, courseID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Updates(fields).Error
}

func (r *repositoryImpl) CoursePublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) Aggregates(ctx context.Context, courseID uuid.UUID) (*CourseAggregates, error) {
	aggregates := &CourseAggregates{}

	type ratingRow struct {
		Average float64
		Count   int64
	}
	var rating ratingRow
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ? AND is_active = ?", courseID, true).
		Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	aggregates.AverageRating = rating.Average
	aggregates.RatingCount = rating.Count

	type lessonRow struct {
		Count    int64
		Duration int64
	}
	var lessons lessonRow
	err = r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Select("COUNT(*) AS count, COALESCE(SUM(duration_seconds), 0) AS duration").
		Where("course_id = ?", courseID).
		Scan(&lessons).Error
	if err != nil {
		return nil, err
	}
	aggregates.TotalLectures = lessons.Count
	aggregates.TotalDurationSeconds = lessons.Duration

	return aggregates, nil
}

func (r *repositoryImpl) FindInstructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error) {
	var instructor models.Instructor
	err := r.db.WithContext(ctx).
		Where("id = ?", instructorID).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *repositoryImpl) CreateSection(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *repositoryImpl) UpdateSection(ctx context.Context, sectionID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Section{}).
		Where("id = ?", sectionID).
		Updates(fields).Error
}

func (r *repositoryImpl) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", sectionID).
		Delete(&models.Section{}).Error
}

func (r *repositoryImpl) FindSectionByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Section, error) {
	var section models.Section
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND public_id = ?", courseID, publicID).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *repositoryImpl) SectionPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Section{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *repositoryImpl) UpdateLesson(ctx context.Context, lessonID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", lessonID).
		Updates(fields).Error
}

func (r *repositoryImpl) DeleteLesson(ctx context.Context, lessonID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lessonID).
		Delete(&models.Lesson{}).Error
}

func (r *repositoryImpl) FindLessonByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND public_id = ?", courseID, publicID).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *repositoryImpl) LessonPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}
