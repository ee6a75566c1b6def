package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository exposes cart persistence helpers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, item *models.CartItem) error
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Delete(ctx context.Context, sessionID string, itemID uuid.UUID) (int64, error)
	DeleteSession(ctx context.Context, sessionID string) (int64, error)
	FindCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Upsert inserts the cart line or refreshes pricing in place when the
// session already holds the course.
func (r *repositoryImpl) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_session_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "country", "price", "tax_fee", "total", "updated_at",
			}),
		}).
		Create(item).Error
}

func (r *repositoryImpl) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("cart_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, sessionID string, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cart_session_id = ? AND id = ?", sessionID, itemID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cart_session_id = ?", sessionID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("id = ?", courseID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}
