package instructor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an instructor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindInstructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error) {
	var instructor models.Instructor
	err := r.db.WithContext(ctx).
		Where("id = ?", instructorID).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *repositoryImpl) CountCourses(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("instructor_id = ?", instructorID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListCourses(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// paidItems scopes order items to paid orders belonging to the instructor.
func paidItems(db *gorm.DB, instructorID uuid.UUID) *gorm.DB {
	return db.
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.instructor_id = ? AND orders.payment_status = ?", instructorID, enums.PaymentStatusPaid)
}

func (r *repositoryImpl) PaidRevenue(ctx context.Context, instructorID uuid.UUID, since *time.Time) (decimal.Decimal, error) {
	query := paidItems(r.db.WithContext(ctx), instructorID)
	if since != nil {
		query = query.Where("order_items.created_at >= ?", *since)
	}
	var row struct {
		Revenue decimal.Decimal
	}
	err := query.
		Select("COALESCE(SUM(order_items.total), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}

func (r *repositoryImpl) MonthlyRevenue(ctx context.Context, instructorID uuid.UUID) ([]MonthlyRevenue, error) {
	var rows []MonthlyRevenue
	err := paidItems(r.db.WithContext(ctx), instructorID).
		Select(
			"EXTRACT(YEAR FROM order_items.created_at)::int AS year, " +
				"EXTRACT(MONTH FROM order_items.created_at)::int AS month, " +
				"COALESCE(SUM(order_items.total), 0) AS revenue",
		).
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CourseSales(ctx context.Context, instructorID uuid.UUID) ([]CourseSales, error) {
	var rows []CourseSales
	err := paidItems(r.db.WithContext(ctx), instructorID).
		Joins("JOIN courses ON courses.id = order_items.course_id").
		Select(
			"order_items.course_id AS course_id, " +
				"courses.title AS course_title, " +
				"COALESCE(SUM(order_items.total), 0) AS revenue, " +
				"COUNT(*) AS sales",
		).
		Group("order_items.course_id, courses.title").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CountDistinctStudents(ctx context.Context, instructorID uuid.UUID) (int64, error) {
	var count int64
	err := paidItems(r.db.WithContext(ctx), instructorID).
		Where("orders.user_id IS NOT NULL").
		Distinct("orders.user_id").
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListStudents(ctx context.Context, instructorID uuid.UUID) ([]StudentRow, error) {
	var rows []StudentRow
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN users ON users.id = enrollments.user_id").
		Where("enrollments.instructor_id = ?", instructorID).
		Select(
			"enrollments.user_id AS user_id, " +
				"users.full_name AS full_name, " +
				"users.email AS email, " +
				"COUNT(DISTINCT enrollments.course_id) AS courses",
		).
		Group("enrollments.user_id, users.full_name, users.email").
		Order("full_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListOrders(ctx context.Context, instructorID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", "instructor_id = ?", instructorID).
		Preload("Items.Course").
		Joins("JOIN order_instructors ON order_instructors.order_id = orders.id").
		Where("order_instructors.instructor_id = ? AND orders.payment_status = ?", instructorID, enums.PaymentStatusPaid).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repositoryImpl) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repositoryImpl) UpdateCoupon(ctx context.Context, couponID uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", couponID).
		Updates(fields).Error
}

func (r *repositoryImpl) DeleteCoupon(ctx context.Context, instructorID, couponID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND instructor_id = ?", couponID, instructorID).
		Delete(&models.Coupon{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindCoupon(ctx context.Context, instructorID, couponID uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("id = ? AND instructor_id = ?", couponID, instructorID).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repositoryImpl) ListCoupons(ctx context.Context, instructorID uuid.UUID) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}
