package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// CreateOrder persists the order with its items and instructor join rows.
// Instructor rows themselves are never touched.
func (r *repositoryImpl) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("Instructors.*", "Coupons").
		Create(order).Error
}

func (r *repositoryImpl) findByPublicID(ctx context.Context, publicID string, lock bool) (*models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Course").
		Preload("Instructors").
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

func (r *repositoryImpl) FindByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	return r.findByPublicID(ctx, publicID, false)
}

// FindByPublicIDForUpdate locks the order row for the life of the
// surrounding transaction.
func (r *repositoryImpl) FindByPublicIDForUpdate(ctx context.Context, publicID string) (*models.Order, error) {
	return r.findByPublicID(ctx, publicID, true)
}

func (r *repositoryImpl) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) UpdateOrderTotals(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"sub_total":     order.SubTotal,
			"tax_fee":       order.TaxFee,
			"initial_total": order.InitialTotal,
			"saved":         order.Saved,
			"total":         order.Total,
		}).Error
}

func (r *repositoryImpl) UpdateItemDiscount(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"total":          item.Total,
			"saved":          item.Saved,
			"applied_coupon": item.AppliedCoupon,
		}).Error
}

func (r *repositoryImpl) FindActiveCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repositoryImpl) ItemCouponLinked(ctx context.Context, orderItemID, couponID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("order_item_coupons").
		Where("order_item_id = ? AND coupon_id = ?", orderItemID, couponID).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) LinkItemCoupon(ctx context.Context, orderItemID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO order_item_coupons (order_item_id, coupon_id) VALUES (?, ?)", orderItemID, couponID).
		Error
}

func (r *repositoryImpl) LinkOrderCoupon(ctx context.Context, orderID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO order_coupons (order_id, coupon_id) VALUES (?, ?) ON CONFLICT DO NOTHING", orderID, couponID).
		Error
}

func (r *repositoryImpl) RecordRedemption(ctx context.Context, couponID, userID uuid.UUID) error {
	redemption := models.CouponRedemption{CouponID: couponID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&redemption).Error
}

func (r *repositoryImpl) FindEnrollmentsByOrderItems(ctx context.Context, orderItemIDs []uuid.UUID) ([]models.Enrollment, error) {
	if len(orderItemIDs) == 0 {
		return nil, nil
	}
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("order_item_id IN ?", orderItemIDs).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
