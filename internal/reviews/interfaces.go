package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for course reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, reviewID uuid.UUID) (*models.Review, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Review, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Review, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error)
	SaveReply(ctx context.Context, reviewID uuid.UUID, reply string) error

	FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error)
	FindCourseByID(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	EnrollmentExists(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}
