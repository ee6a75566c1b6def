package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and coupons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	FindByPublicIDForUpdate(ctx context.Context, publicID string) (*models.Order, error)
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
	UpdateOrderTotals(ctx context.Context, order *models.Order) error
	UpdateItemDiscount(ctx context.Context, item *models.OrderItem) error
	FindActiveCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	ItemCouponLinked(ctx context.Context, orderItemID, couponID uuid.UUID) (bool, error)
	LinkItemCoupon(ctx context.Context, orderItemID, couponID uuid.UUID) error
	LinkOrderCoupon(ctx context.Context, orderID, couponID uuid.UUID) error
	RecordRedemption(ctx context.Context, couponID, userID uuid.UUID) error
	FindEnrollmentsByOrderItems(ctx context.Context, orderItemIDs []uuid.UUID) ([]models.Enrollment, error)
}

type cartLoader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
}

type taxResolver interface {
	RateForCountry(ctx context.Context, name string) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
