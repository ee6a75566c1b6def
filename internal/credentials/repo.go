package credentials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a credentials repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindEnrollmentByPublicID(ctx context.Context, publicID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("public_id = ?", publicID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *repositoryImpl) FindCertificateByPublicID(ctx context.Context, publicID string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&certificate).Error
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *repositoryImpl) CreateCourseToken(ctx context.Context, token *models.CourseToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repositoryImpl) FindCourseTokenByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*models.CourseToken, error) {
	var token models.CourseToken
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repositoryImpl) CourseAssetIDExists(ctx context.Context, assetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CourseToken{}).
		Where("asset_id = ?", assetID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) CreateCertificateToken(ctx context.Context, token *models.CertificateToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repositoryImpl) FindCertificateTokenByCertificate(ctx context.Context, certificateID uuid.UUID) (*models.CertificateToken, error) {
	var token models.CertificateToken
	err := r.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repositoryImpl) CertificateAssetIDExists(ctx context.Context, assetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CertificateToken{}).
		Where("asset_id = ?", assetID).
		Count(&count).Error
	return count > 0, err
}
