package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/razorpay"
)

// Repository defines persistence operations for the payment flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	FindOrderByPublicIDForUpdate(ctx context.Context, publicID string) (*models.Order, error)
	SaveGatewayOrderID(ctx context.Context, order *models.Order, gatewayOrderID string) error
	MarkPaid(ctx context.Context, order *models.Order, paymentID, signature string) error
	DeleteCartSession(ctx context.Context, sessionID string) error
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	EnrollmentPublicIDExists(ctx context.Context, publicID string) (bool, error)
}

type gateway interface {
	KeyID() string
	Currency() string
	CreateOrder(ctx context.Context, input razorpay.CreateOrderInput) (*razorpay.GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
