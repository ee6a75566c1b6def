package payments

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) findOrder(ctx context.Context, publicID string, lock bool) (*models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Course").
		Where("public_id = ?", publicID)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}})
	}
	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	return r.findOrder(ctx, publicID, false)
}

func (r *repositoryImpl) FindOrderByPublicIDForUpdate(ctx context.Context, publicID string) (*models.Order, error) {
	return r.findOrder(ctx, publicID, true)
}

func (r *repositoryImpl) SaveGatewayOrderID(ctx context.Context, order *models.Order, gatewayOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("gateway_order_id", gatewayOrderID).Error
}

func (r *repositoryImpl) MarkPaid(ctx context.Context, order *models.Order, paymentID, signature string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"payment_status":     enums.PaymentStatusPaid,
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
		}).Error
}

func (r *repositoryImpl) DeleteCartSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("cart_session_id = ?", sessionID).
		Delete(&models.CartItem{}).Error
}

func (r *repositoryImpl) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *repositoryImpl) EnrollmentPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}
