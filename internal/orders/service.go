package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/pricing"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const publicIDAttempts = 5

// Service exposes order creation, checkout reads and coupon application.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Checkout(ctx context.Context, publicID string) (*CheckoutView, error)
	ApplyCoupon(ctx context.Context, input ApplyCouponInput) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
	cart cartLoader
	tax  taxResolver
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo Repository, tx txRunner, cart cartLoader, tax taxResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if tax == nil {
		return nil, fmt.Errorf("tax resolver required")
	}
	return &service{repo: repo, tx: tx, cart: cart, tax: tax}, nil
}

// CreateInput captures the checkout form plus the originating cart session.
type CreateInput struct {
	FullName      string
	Email         string
	Country       string
	CartSessionID string
	UserID        *uuid.UUID
}

// CheckoutView is the read-only projection served on the checkout page.
type CheckoutView struct {
	Order       *models.Order     `json:"order"`
	Enrollments map[string]string `json:"enrollments,omitempty"`
}

// ApplyCouponInput identifies the order, coupon code and redeeming user.
type ApplyCouponInput struct {
	OrderPublicID string
	Code          string
	UserID        uuid.UUID
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.CartSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id required")
	}

	lines, err := s.cart.ListBySession(ctx, input.CartSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		publicID, err := s.freshPublicID(ctx, repo)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		instructorSeen := map[uuid.UUID]struct{}{}
		var instructors []models.Instructor
		for _, line := range lines {
			if line.Course == nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cart references a missing course")
			}
			rate, err := s.tax.RateForCountry(ctx, line.Country)
			if err != nil {
				return err
			}
			quote := pricing.QuoteFor(line.Course.Price, rate)
			itemPublicID, err := shortid.New()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate item id")
			}
			items = append(items, models.OrderItem{
				PublicID:     itemPublicID,
				CourseID:     line.CourseID,
				InstructorID: line.Course.InstructorID,
				Price:        pricing.Round2(quote.Price),
				TaxFee:       pricing.Round2(quote.TaxFee),
				InitialTotal: pricing.Round2(quote.Total),
				Saved:        decimal.Zero,
				Total:        pricing.Round2(quote.Total),
			})
			if _, ok := instructorSeen[line.Course.InstructorID]; !ok {
				instructorSeen[line.Course.InstructorID] = struct{}{}
				instructors = append(instructors, models.Instructor{ID: line.Course.InstructorID})
			}
		}

		totals := pricing.RecomputeOrderTotals(items)
		order = &models.Order{
			PublicID:      publicID,
			UserID:        input.UserID,
			FullName:      strings.TrimSpace(input.FullName),
			Email:         strings.TrimSpace(input.Email),
			Country:       input.Country,
			CartSessionID: input.CartSessionID,
			SubTotal:      pricing.Round2(totals.SubTotal),
			TaxFee:        pricing.Round2(totals.TaxFee),
			InitialTotal:  pricing.Round2(totals.InitialTotal),
			Saved:         pricing.Round2(totals.Saved),
			Total:         pricing.Round2(totals.Total),
			Items:         items,
			Instructors:   instructors,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Checkout(ctx context.Context, publicID string) (*CheckoutView, error) {
	order, err := s.loadOrder(ctx, s.repo, publicID, false)
	if err != nil {
		return nil, err
	}

	view := &CheckoutView{Order: order}
	itemIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		itemIDs = append(itemIDs, item.ID)
	}
	enrollments, err := s.repo.FindEnrollmentsByOrderItems(ctx, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enrollments")
	}
	if len(enrollments) > 0 {
		view.Enrollments = make(map[string]string, len(enrollments))
		byItem := map[uuid.UUID]string{}
		for _, enrollment := range enrollments {
			byItem[enrollment.OrderItemID] = enrollment.PublicID
		}
		for _, item := range order.Items {
			if eid, ok := byItem[item.ID]; ok {
				view.Enrollments[item.PublicID] = eid
			}
		}
	}
	return view, nil
}

func (s *service) ApplyCoupon(ctx context.Context, input ApplyCouponInput) (*models.Order, error) {
	if input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderPublicID, true)
		if err != nil {
			return err
		}

		coupon, err := repo.FindActiveCouponByCode(ctx, strings.TrimSpace(input.Code))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		}

		var eligible []*models.OrderItem
		for i := range order.Items {
			if order.Items[i].InstructorID == coupon.InstructorID {
				eligible = append(eligible, &order.Items[i])
			}
		}
		if len(eligible) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "coupon not applicable to this order")
		}

		applied := 0
		for _, item := range eligible {
			linked, err := repo.ItemCouponLinked(ctx, item.ID, coupon.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon link")
			}
			if linked {
				continue
			}

			discount := pricing.DiscountAmount(item.Total, coupon.Discount)
			item.Total = pricing.Round2(item.Total.Sub(discount))
			item.Saved = pricing.Round2(item.Saved.Add(discount))
			item.AppliedCoupon = true
			if err := repo.UpdateItemDiscount(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply item discount")
			}
			if err := repo.LinkItemCoupon(ctx, item.ID, coupon.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link coupon")
			}
			applied++
		}
		if applied == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon already applied")
		}

		if err := repo.LinkOrderCoupon(ctx, order.ID, coupon.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link order coupon")
		}
		if err := repo.RecordRedemption(ctx, coupon.ID, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record redemption")
		}

		totals := pricing.RecomputeOrderTotals(order.Items)
		order.SubTotal = pricing.Round2(totals.SubTotal)
		order.TaxFee = pricing.Round2(totals.TaxFee)
		order.InitialTotal = pricing.Round2(totals.InitialTotal)
		order.Saved = pricing.Round2(totals.Saved)
		order.Total = pricing.Round2(totals.Total)
		if err := repo.UpdateOrderTotals(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order totals")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, publicID string, lock bool) (*models.Order, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	var (
		order *models.Order
		err   error
	)
	if lock {
		order, err = repo.FindByPublicIDForUpdate(ctx, publicID)
	} else {
		order, err = repo.FindByPublicID(ctx, publicID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) freshPublicID(ctx context.Context, repo Repository) (string, error) {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
		}
		exists, err := repo.PublicIDExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order id")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate order id")
}
