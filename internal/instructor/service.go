package instructor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

// recentRevenueWindow is the rolling window used for the dashboard's
// "this month" figure.
const recentRevenueWindow = 28 * 24 * time.Hour

// Service exposes instructor dashboards, earnings and coupon management.
type Service interface {
	Summary(ctx context.Context, instructorID uuid.UUID) (*Summary, error)
	MonthlyEarnings(ctx context.Context, instructorID uuid.UUID) ([]MonthlyRevenue, error)
	BestSelling(ctx context.Context, instructorID uuid.UUID) ([]CourseSales, error)
	Orders(ctx context.Context, instructorID uuid.UUID) ([]models.Order, error)
	Students(ctx context.Context, instructorID uuid.UUID) ([]StudentRow, error)
	Courses(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error)

	CreateCoupon(ctx context.Context, instructorID uuid.UUID, input CouponInput) (*models.Coupon, error)
	UpdateCoupon(ctx context.Context, instructorID, couponID uuid.UUID, input CouponUpdateInput) (*models.Coupon, error)
	DeleteCoupon(ctx context.Context, instructorID, couponID uuid.UUID) error
	ListCoupons(ctx context.Context, instructorID uuid.UUID) ([]models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the instructor service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("instructor repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Summary is the instructor dashboard headline block.
type Summary struct {
	TotalCourses   int64           `json:"total_courses"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	TotalStudents  int64           `json:"total_students"`
}

// CouponInput carries a new coupon.
type CouponInput struct {
	Code     string `json:"code" validate:"required,max=40"`
	Discount int    `json:"discount" validate:"required,min=1,max=100"`
}

// CouponUpdateInput patches a coupon. Nil pointers leave the column
// untouched.
type CouponUpdateInput struct {
	Discount *int  `json:"discount" validate:"omitempty,min=1,max=100"`
	IsActive *bool `json:"is_active"`
}

func (s *service) Summary(ctx context.Context, instructorID uuid.UUID) (*Summary, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	courses, err := s.repo.CountCourses(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count courses")
	}
	total, err := s.repo.PaidRevenue(ctx, instructorID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	since := s.now().Add(-recentRevenueWindow)
	monthly, err := s.repo.PaidRevenue(ctx, instructorID, &since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum recent revenue")
	}
	students, err := s.repo.CountDistinctStudents(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count students")
	}

	return &Summary{
		TotalCourses:   courses,
		TotalRevenue:   total,
		MonthlyRevenue: monthly,
		TotalStudents:  students,
	}, nil
}

func (s *service) MonthlyEarnings(ctx context.Context, instructorID uuid.UUID) ([]MonthlyRevenue, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	rows, err := s.repo.MonthlyRevenue(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "monthly earnings")
	}
	return rows, nil
}

func (s *service) BestSelling(ctx context.Context, instructorID uuid.UUID) ([]CourseSales, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	rows, err := s.repo.CourseSales(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "course sales")
	}
	return rows, nil
}

func (s *service) Orders(ctx context.Context, instructorID uuid.UUID) ([]models.Order, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListOrders(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) Students(ctx context.Context, instructorID uuid.UUID) ([]StudentRow, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list students")
	}
	return students, nil
}

func (s *service) Courses(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListCourses(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list courses")
	}
	return courses, nil
}

func (s *service) CreateCoupon(ctx context.Context, instructorID uuid.UUID, input CouponInput) (*models.Coupon, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if input.Discount < 1 || input.Discount > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 1 and 100")
	}

	coupon := &models.Coupon{
		InstructorID: instructorID,
		Code:         code,
		Discount:     input.Discount,
		IsActive:     true,
	}
	if err := s.repo.CreateCoupon(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) UpdateCoupon(ctx context.Context, instructorID, couponID uuid.UUID, input CouponUpdateInput) (*models.Coupon, error) {
	coupon, err := s.loadCoupon(ctx, instructorID, couponID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Discount != nil {
		if *input.Discount < 1 || *input.Discount > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 1 and 100")
		}
		fields["discount"] = *input.Discount
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.UpdateCoupon(ctx, coupon.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	if input.Discount != nil {
		coupon.Discount = *input.Discount
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return coupon, nil
}

func (s *service) DeleteCoupon(ctx context.Context, instructorID, couponID uuid.UUID) error {
	deleted, err := s.repo.DeleteCoupon(ctx, instructorID, couponID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func (s *service) ListCoupons(ctx context.Context, instructorID uuid.UUID) ([]models.Coupon, error) {
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	coupons, err := s.repo.ListCoupons(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, nil
}

func (s *service) requireInstructor(ctx context.Context, instructorID uuid.UUID) error {
	if instructorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "instructor id required")
	}
	instructor, err := s.repo.FindInstructor(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "instructor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load instructor")
	}
	if !instructor.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "instructor account is inactive")
	}
	return nil
}

func (s *service) loadCoupon(ctx context.Context, instructorID, couponID uuid.UUID) (*models.Coupon, error) {
	if couponID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon id required")
	}
	coupon, err := s.repo.FindCoupon(ctx, instructorID, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}
