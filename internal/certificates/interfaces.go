package certificates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for certificate issuance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error)
	EnrollmentExists(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompletedLessons(ctx context.Context, userID, courseID uuid.UUID) (int64, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Certificate, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Certificate, error)
	Create(ctx context.Context, certificate *models.Certificate) error
	UpdateStatus(ctx context.Context, certificateID uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
