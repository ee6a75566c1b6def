package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/razorpay"
)

type fakeRepository struct {
	orders          map[string]*models.Order
	savedGatewayID  string
	markedPaid      bool
	cartCleared     string
	enrollments     []*models.Enrollment
	enrollmentIDSet map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orders:          map[string]*models.Order{},
		enrollmentIDSet: map[string]bool{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	order, ok := f.orders[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeRepository) FindOrderByPublicIDForUpdate(ctx context.Context, publicID string) (*models.Order, error) {
	return f.FindOrderByPublicID(ctx, publicID)
}

func (f *fakeRepository) SaveGatewayOrderID(ctx context.Context, order *models.Order, gatewayOrderID string) error {
	f.savedGatewayID = gatewayOrderID
	return nil
}

func (f *fakeRepository) MarkPaid(ctx context.Context, order *models.Order, paymentID, signature string) error {
	f.markedPaid = true
	order.PaymentStatus = enums.PaymentStatusPaid
	order.GatewayPaymentID = &paymentID
	order.GatewaySignature = &signature
	return nil
}

func (f *fakeRepository) DeleteCartSession(ctx context.Context, sessionID string) error {
	f.cartCleared = sessionID
	return nil
}

func (f *fakeRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	f.enrollments = append(f.enrollments, enrollment)
	return nil
}

func (f *fakeRepository) EnrollmentPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	return f.enrollmentIDSet[publicID], nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeGateway struct {
	created      []razorpay.CreateOrderInput
	createErr    error
	validPayment bool
}

func (f *fakeGateway) KeyID() string    { return "rzp_test_key" }
func (f *fakeGateway) Currency() string { return "INR" }

func (f *fakeGateway) CreateOrder(ctx context.Context, input razorpay.CreateOrderInput) (*razorpay.GatewayOrder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	return &razorpay.GatewayOrder{
		ID:          "order_gw_1",
		AmountMinor: input.AmountMinor,
		Currency:    input.Currency,
		Receipt:     input.Receipt,
		Status:      "created",
	}, nil
}

func (f *fakeGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	return f.validPayment
}

func seedOrder(repo *fakeRepository, userID *uuid.UUID) *models.Order {
	instructorID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		PublicID:      "123456",
		UserID:        userID,
		FullName:      "Asha Rao",
		Email:         "asha@example.com",
		CartSessionID: "sess-1",
		Total:         decimal.RequireFromString("108.00"),
		PaymentStatus: enums.PaymentStatusProcessing,
		Items: []models.OrderItem{
			{ID: uuid.New(), PublicID: "234567", CourseID: uuid.New(), InstructorID: instructorID},
			{ID: uuid.New(), PublicID: "345678", CourseID: uuid.New(), InstructorID: instructorID},
		},
	}
	repo.orders[order.PublicID] = order
	return order
}

func newPaymentsService(t *testing.T, repo Repository, gw gateway) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, gw)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestCreateGatewayOrderConvertsToMinorUnits(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	seedOrder(repo, &userID)
	gw := &fakeGateway{}

	svc := newPaymentsService(t, repo, gw)
	payload, err := svc.CreateGatewayOrder(context.Background(), "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.created) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(gw.created))
	}
	if gw.created[0].AmountMinor != 10800 {
		t.Fatalf("expected 10800 paise, got %d", gw.created[0].AmountMinor)
	}
	if payload.GatewayOrderID != "order_gw_1" {
		t.Fatalf("unexpected gateway order id %s", payload.GatewayOrderID)
	}
	if payload.KeyID != "rzp_test_key" {
		t.Fatalf("unexpected key id %s", payload.KeyID)
	}
	if repo.savedGatewayID != "order_gw_1" {
		t.Fatal("gateway order id not persisted")
	}
}

func TestCreateGatewayOrderAlreadyPaid(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	order := seedOrder(repo, &userID)
	order.PaymentStatus = enums.PaymentStatusPaid

	svc := newPaymentsService(t, repo, &fakeGateway{})
	_, err := svc.CreateGatewayOrder(context.Background(), order.PublicID)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConfirmRejectsBadSignature(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	seedOrder(repo, &userID)

	svc := newPaymentsService(t, repo, &fakeGateway{validPayment: false})
	_, _, err := svc.Confirm(context.Background(), ConfirmInput{
		OrderPublicID:    "123456",
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "bogus",
	})
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if repo.markedPaid {
		t.Fatal("order must not be touched on bad signature")
	}
}

func TestConfirmEnrollsAndEmitsEvents(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	order := seedOrder(repo, &userID)

	svc := newPaymentsService(t, repo, &fakeGateway{validPayment: true})
	result, events, err := svc.Confirm(context.Background(), ConfirmInput{
		OrderPublicID:    order.PublicID,
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !repo.markedPaid {
		t.Fatal("order not marked paid")
	}
	if repo.cartCleared != "sess-1" {
		t.Fatalf("cart session not cleared, got %q", repo.cartCleared)
	}
	if len(repo.enrollments) != 2 {
		t.Fatalf("expected 2 enrollments, got %d", len(repo.enrollments))
	}
	for _, enrollment := range repo.enrollments {
		if enrollment.UserID != userID {
			t.Fatal("enrollment not attributed to buyer")
		}
		if len(enrollment.PublicID) != 6 {
			t.Fatalf("expected 6-digit enrollment id, got %q", enrollment.PublicID)
		}
	}
	// one buyer + one instructor event per item
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if result.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("unexpected status %s", result.PaymentStatus)
	}
	if len(result.Enrollments) != 2 {
		t.Fatalf("expected 2 enrollment ids, got %d", len(result.Enrollments))
	}
}

func TestConfirmReplayIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	order := seedOrder(repo, &userID)
	order.PaymentStatus = enums.PaymentStatusPaid

	svc := newPaymentsService(t, repo, &fakeGateway{validPayment: true})
	result, events, err := svc.Confirm(context.Background(), ConfirmInput{
		OrderPublicID:    order.PublicID,
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message != "payment already processed" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(events) != 0 {
		t.Fatalf("replay must not emit events, got %d", len(events))
	}
	if repo.markedPaid || len(repo.enrollments) != 0 || repo.cartCleared != "" {
		t.Fatal("replay must have no side effects")
	}
}

func TestConfirmWithoutBuyerFails(t *testing.T) {
	repo := newFakeRepository()
	seedOrder(repo, nil)

	svc := newPaymentsService(t, repo, &fakeGateway{validPayment: true})
	_, _, err := svc.Confirm(context.Background(), ConfirmInput{
		OrderPublicID:    "123456",
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
