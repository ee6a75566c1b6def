package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/razorpay"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const publicIDAttempts = 5

// minorUnitsPerRupee converts rupee totals into the paise amounts the
// gateway expects.
var minorUnitsPerRupee = decimal.NewFromInt(100)

// Service drives the gateway handoff and payment confirmation.
type Service interface {
	CreateGatewayOrder(ctx context.Context, orderPublicID string) (*CheckoutPayload, error)
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, []notifications.Event, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	gateway gateway
}

// NewService builds a payments service backed by the provided stack.
func NewService(repo Repository, tx txRunner, gw gateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{repo: repo, tx: tx, gateway: gw}, nil
}

// CheckoutPayload is handed to the frontend to open the gateway widget.
type CheckoutPayload struct {
	KeyID          string            `json:"key_id"`
	GatewayOrderID string            `json:"gateway_order_id"`
	AmountMinor    int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Notes          map[string]string `json:"notes"`
}

// ConfirmInput is the gateway callback for a completed payment.
type ConfirmInput struct {
	OrderPublicID    string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	UserID           *uuid.UUID
}

// ConfirmResult reports the outcome of a confirmation attempt.
type ConfirmResult struct {
	Message       string              `json:"message"`
	OrderPublicID string              `json:"oid"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Enrollments   []string            `json:"enrollments,omitempty"`
}

func (s *service) CreateGatewayOrder(ctx context.Context, orderPublicID string) (*CheckoutPayload, error) {
	if !shortid.IsValid(orderPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	order, err := s.repo.FindOrderByPublicID(ctx, orderPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	}

	amountMinor := order.Total.Mul(minorUnitsPerRupee).Round(0).IntPart()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderInput{
		AmountMinor: amountMinor,
		Currency:    s.gateway.Currency(),
		Receipt:     order.PublicID,
		Notes:       map[string]string{"oid": order.PublicID},
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveGatewayOrderID(ctx, order, gatewayOrder.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist gateway order id")
	}

	return &CheckoutPayload{
		KeyID:          s.gateway.KeyID(),
		GatewayOrderID: gatewayOrder.ID,
		AmountMinor:    gatewayOrder.AmountMinor,
		Currency:       gatewayOrder.Currency,
		Name:           order.FullName,
		Email:          order.Email,
		Notes:          map[string]string{"oid": order.PublicID},
	}, nil
}

// Confirm verifies the gateway signature, then atomically marks the order
// paid, clears the originating cart and enrolls the buyer in every
// purchased course. Replays of an already-paid order succeed without side
// effects. Notification events are returned for dispatch after commit.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, []notifications.Event, error) {
	if !shortid.IsValid(input.OrderPublicID) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment verification failed")
	}

	var (
		result *ConfirmResult
		events []notifications.Event
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByPublicIDForUpdate(ctx, input.OrderPublicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.PaymentStatus == enums.PaymentStatusPaid {
			result = &ConfirmResult{
				Message:       "payment already processed",
				OrderPublicID: order.PublicID,
				PaymentStatus: enums.PaymentStatusPaid,
			}
			return nil
		}

		userID, err := resolveBuyer(order, input.UserID)
		if err != nil {
			return err
		}

		if err := repo.MarkPaid(ctx, order, input.GatewayPaymentID, input.Signature); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if err := repo.DeleteCartSession(ctx, order.CartSessionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		enrollmentIDs := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			publicID, err := s.freshEnrollmentID(ctx, repo)
			if err != nil {
				return err
			}
			enrollment := &models.Enrollment{
				PublicID:     publicID,
				CourseID:     item.CourseID,
				UserID:       userID,
				InstructorID: item.InstructorID,
				OrderItemID:  item.ID,
			}
			if err := repo.CreateEnrollment(ctx, enrollment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create enrollment")
			}
			enrollmentIDs = append(enrollmentIDs, publicID)

			events = append(events, notifications.NewOrderEvent(item.InstructorID, order.ID, item.ID))
			events = append(events, notifications.EnrollmentCompletedEvent(userID, item.ID).WithEmail(notifications.EmailMessage{
				To:        order.Email,
				Subject:   "Your enrollment is ready",
				PlainText: fmt.Sprintf("Order %s is confirmed. Your courses are now available.", order.PublicID),
			}))
		}

		result = &ConfirmResult{
			Message:       "payment confirmed",
			OrderPublicID: order.PublicID,
			PaymentStatus: enums.PaymentStatusPaid,
			Enrollments:   enrollmentIDs,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if result.Enrollments == nil {
		// replay: no new side effects, nothing to dispatch
		return result, nil, nil
	}
	return result, events, nil
}

func resolveBuyer(order *models.Order, fallback *uuid.UUID) (uuid.UUID, error) {
	if order.UserID != nil {
		return *order.UserID, nil
	}
	if fallback != nil && *fallback != uuid.Nil {
		return *fallback, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user required to enroll")
}

func (s *service) freshEnrollmentID(ctx context.Context, repo Repository) (string, error) {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate enrollment id")
		}
		exists, err := repo.EnrollmentPublicIDExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check enrollment id")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate enrollment id")
}
