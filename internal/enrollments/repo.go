package enrollments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an enrollments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repositoryImpl) FindByPublicID(ctx context.Context, publicID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Sections").
		Where("public_id = ?", publicID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *repositoryImpl) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *repositoryImpl) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
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

func (r *repositoryImpl) CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CountCompletedLessons(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CompletedLesson{}).
		Where("user_id = ?", userID)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListCompletedLessonIDs(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CompletedLesson{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) DeleteCompletedLesson(ctx context.Context, userID, lessonID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&models.CompletedLesson{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateCompletedLesson(ctx context.Context, completed *models.CompletedLesson) error {
	return r.db.WithContext(ctx).Create(completed).Error
}

func (r *repositoryImpl) CountCertificates(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateNote(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *repositoryImpl) UpdateNote(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", note.ID).
		Updates(map[string]any{
			"title": note.Title,
			"body":  note.Body,
		}).Error
}

func (r *repositoryImpl) DeleteNote(ctx context.Context, userID uuid.UUID, publicID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		Delete(&models.Note{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindNoteByPublicID(ctx context.Context, userID uuid.UUID, publicID string) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repositoryImpl) ListNotes(ctx context.Context, userID, courseID uuid.UUID) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repositoryImpl) NotePublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) DeleteWishlistItem(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.WishlistItem{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
