package enrollments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for enrollments, lesson
// progress, notes and wishlists.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error)
	FindLessonByPublicID(ctx context.Context, courseID uuid.UUID, publicID string) (*models.Lesson, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompletedLessons(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID) (int64, error)
	ListCompletedLessonIDs(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error)
	DeleteCompletedLesson(ctx context.Context, userID, lessonID uuid.UUID) (int64, error)
	CreateCompletedLesson(ctx context.Context, completed *models.CompletedLesson) error

	CountCertificates(ctx context.Context, userID uuid.UUID) (int64, error)

	CreateNote(ctx context.Context, note *models.Note) error
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, userID uuid.UUID, publicID string) (int64, error)
	FindNoteByPublicID(ctx context.Context, userID uuid.UUID, publicID string) (*models.Note, error)
	ListNotes(ctx context.Context, userID, courseID uuid.UUID) ([]models.Note, error)
	NotePublicIDExists(ctx context.Context, publicID string) (bool, error)

	DeleteWishlistItem(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
	CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
