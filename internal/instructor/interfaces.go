package instructor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// MonthlyRevenue is revenue over paid items summed per calendar month.
type MonthlyRevenue struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// CourseSales is per-course revenue and sales volume.
type CourseSales struct {
	CourseID    uuid.UUID       `json:"-"`
	CourseTitle string          `json:"course_title"`
	Revenue     decimal.Decimal `json:"revenue"`
	Sales       int64           `json:"sales"`
}

// StudentRow is one distinct purchaser of an instructor's courses.
type StudentRow struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Courses  int64     `json:"courses"`
}

// Repository defines persistence operations for instructor analytics and
// coupon management.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindInstructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error)
	CountCourses(ctx context.Context, instructorID uuid.UUID) (int64, error)
	ListCourses(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error)

	PaidRevenue(ctx context.Context, instructorID uuid.UUID, since *time.Time) (decimal.Decimal, error)
	MonthlyRevenue(ctx context.Context, instructorID uuid.UUID) ([]MonthlyRevenue, error)
	CourseSales(ctx context.Context, instructorID uuid.UUID) ([]CourseSales, error)
	CountDistinctStudents(ctx context.Context, instructorID uuid.UUID) (int64, error)
	ListStudents(ctx context.Context, instructorID uuid.UUID) ([]StudentRow, error)
	ListOrders(ctx context.Context, instructorID uuid.UUID) ([]models.Order, error)

	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	UpdateCoupon(ctx context.Context, couponID uuid.UUID, fields map[string]any) error
	DeleteCoupon(ctx context.Context, instructorID, couponID uuid.UUID) (int64, error)
	FindCoupon(ctx context.Context, instructorID, couponID uuid.UUID) (*models.Coupon, error)
	ListCoupons(ctx context.Context, instructorID uuid.UUID) ([]models.Coupon, error)
}
