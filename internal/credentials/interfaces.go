package credentials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for on-chain token records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindEnrollmentByPublicID(ctx context.Context, publicID string) (*models.Enrollment, error)
	FindCertificateByPublicID(ctx context.Context, publicID string) (*models.Certificate, error)

	CreateCourseToken(ctx context.Context, token *models.CourseToken) error
	FindCourseTokenByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*models.CourseToken, error)
	CourseAssetIDExists(ctx context.Context, assetID string) (bool, error)

	CreateCertificateToken(ctx context.Context, token *models.CertificateToken) error
	FindCertificateTokenByCertificate(ctx context.Context, certificateID uuid.UUID) (*models.CertificateToken, error)
	CertificateAssetIDExists(ctx context.Context, assetID string) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
