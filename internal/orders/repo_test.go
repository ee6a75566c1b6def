package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	instructors := `
CREATE TABLE IF NOT EXISTS instructors (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  full_name TEXT NOT NULL,
  bio TEXT,
  country TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	courses := `
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  public_id TEXT NOT NULL UNIQUE,
  category_id TEXT,
  instructor_id TEXT NOT NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  price NUMERIC NOT NULL,
  language TEXT NOT NULL DEFAULT 'english',
  level TEXT NOT NULL DEFAULT 'beginner',
  platform_status TEXT NOT NULL DEFAULT 'review',
  instructor_status TEXT NOT NULL DEFAULT 'draft',
  featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  public_id TEXT NOT NULL UNIQUE,
  user_id TEXT,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  country TEXT NOT NULL,
  cart_session_id TEXT NOT NULL,
  sub_total NUMERIC NOT NULL,
  tax_fee NUMERIC NOT NULL,
  initial_total NUMERIC NOT NULL,
  saved NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'processing',
  gateway_order_id TEXT,
  gateway_payment_id TEXT,
  gateway_signature TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  public_id TEXT NOT NULL UNIQUE,
  order_id TEXT NOT NULL,
  course_id TEXT NOT NULL,
  instructor_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  tax_fee NUMERIC NOT NULL,
  initial_total NUMERIC NOT NULL,
  saved NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  applied_coupon INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderInstructors := `
CREATE TABLE IF NOT EXISTS order_instructors (
  order_id TEXT NOT NULL,
  instructor_id TEXT NOT NULL,
  PRIMARY KEY (order_id, instructor_id)
);`
	coupons := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  instructor_id TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  discount INTEGER NOT NULL DEFAULT 1,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemCoupons := `
CREATE TABLE IF NOT EXISTS order_item_coupons (
  order_item_id TEXT NOT NULL,
  coupon_id TEXT NOT NULL,
  PRIMARY KEY (order_item_id, coupon_id)
);`
	orderCoupons := `
CREATE TABLE IF NOT EXISTS order_coupons (
  order_id TEXT NOT NULL,
  coupon_id TEXT NOT NULL,
  PRIMARY KEY (order_id, coupon_id)
);`
	couponRedemptions := `
CREATE TABLE IF NOT EXISTS coupon_redemptions (
  id TEXT PRIMARY KEY,
  coupon_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (coupon_id, user_id)
);`
	enrollments := `
CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  public_id TEXT NOT NULL UNIQUE,
  course_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  instructor_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, order_item_id)
);`
	for _, ddl := range []string{instructors, courses, ordersTable, orderItems, orderInstructors, coupons, orderItemCoupons, orderCoupons, couponRedemptions, enrollments} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newInstructor(t *testing.T, db *gorm.DB, name string) *models.Instructor {
	t.Helper()

	instructor := &models.Instructor{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		FullName: name,
		IsActive: true,
	}
	require.NoError(t, db.Create(instructor).Error)
	return instructor
}

func newCourse(t *testing.T, db *gorm.DB, instructor *models.Instructor, title string, price decimal.Decimal) *models.Course {
	t.Helper()

	id := uuid.New()
	course := &models.Course{
		ID:               id,
		PublicID:         id.String()[:6],
		InstructorID:     instructor.ID,
		Title:            title,
		Slug:             fmt.Sprintf("%s-%s", title, id.String()[:8]),
		Price:            price,
		Language:         enums.CourseLanguageEnglish,
		Level:            enums.CourseLevelBeginner,
		PlatformStatus:   enums.CoursePlatformStatusPublished,
		InstructorStatus: enums.CourseInstructorStatusPublished,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func newOrder(t *testing.T, instructor *models.Instructor, course *models.Course, publicID string) *models.Order {
	t.Helper()

	price := course.Price
	tax := price.Mul(decimal.NewFromFloat(0.18)).Round(2)
	userID := uuid.New()
	itemID := uuid.New()
	return &models.Order{
		ID:            uuid.New(),
		PublicID:      publicID,
		UserID:        &userID,
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Country:       "India",
		CartSessionID: uuid.NewString(),
		SubTotal:      price,
		TaxFee:        tax,
		InitialTotal:  price.Add(tax),
		Saved:         decimal.Zero,
		Total:         price.Add(tax),
		PaymentStatus: enums.PaymentStatusProcessing,
		Items: []models.OrderItem{{
			ID:           itemID,
			PublicID:     itemID.String()[:6],
			CourseID:     course.ID,
			InstructorID: instructor.ID,
			Price:        price,
			TaxFee:       tax,
			InitialTotal: price.Add(tax),
			Saved:        decimal.Zero,
			Total:        price.Add(tax),
		}},
		Instructors: []models.Instructor{*instructor},
	}
}

func TestRepositoryCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	instructor := newInstructor(t, db, "Grace Hopper")
	course := newCourse(t, db, instructor, "compilers", decimal.NewFromInt(499))
	order := newOrder(t, instructor, course, "100001")

	require.NoError(t, repo.CreateOrder(ctx, order))

	found, err := repo.FindByPublicID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.True(t, found.Total.Equal(order.Total))
	require.Len(t, found.Items, 1)
	require.NotNil(t, found.Items[0].Course)
	assert.Equal(t, "compilers", found.Items[0].Course.Title)
	require.Len(t, found.Instructors, 1)
	assert.Equal(t, instructor.ID, found.Instructors[0].ID)
}

func TestRepositoryPublicIDExists(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	instructor := newInstructor(t, db, "Alan Kay")
	course := newCourse(t, db, instructor, "smalltalk", decimal.NewFromInt(299))
	require.NoError(t, repo.CreateOrder(ctx, newOrder(t, instructor, course, "100002")))

	exists, err := repo.PublicIDExists(ctx, "100002")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.PublicIDExists(ctx, "999999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryFindActiveCouponByCode(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	instructor := newInstructor(t, db, "Barbara Liskov")
	active := &models.Coupon{ID: uuid.New(), InstructorID: instructor.ID, Code: "SPRING25", Discount: 25, IsActive: true}
	disabled := &models.Coupon{ID: uuid.New(), InstructorID: instructor.ID, Code: "EXPIRED10", Discount: 10, IsActive: false}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(disabled).Error)

	found, err := repo.FindActiveCouponByCode(ctx, "SPRING25")
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)
	assert.Equal(t, 25, found.Discount)

	_, err = repo.FindActiveCouponByCode(ctx, "EXPIRED10")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryCouponLinksAndRedemption(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	instructor := newInstructor(t, db, "Donald Knuth")
	course := newCourse(t, db, instructor, "algorithms", decimal.NewFromInt(799))
	order := newOrder(t, instructor, course, "100003")
	require.NoError(t, repo.CreateOrder(ctx, order))

	coupon := &models.Coupon{ID: uuid.New(), InstructorID: instructor.ID, Code: "LAUNCH50", Discount: 50, IsActive: true}
	require.NoError(t, db.Create(coupon).Error)

	itemID := order.Items[0].ID
	linked, err := repo.ItemCouponLinked(ctx, itemID, coupon.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	require.NoError(t, repo.LinkItemCoupon(ctx, itemID, coupon.ID))
	require.NoError(t, repo.LinkOrderCoupon(ctx, order.ID, coupon.ID))

	linked, err = repo.ItemCouponLinked(ctx, itemID, coupon.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	userID := *order.UserID
	require.NoError(t, repo.RecordRedemption(ctx, coupon.ID, userID))
	// Replays of the same redemption are a no-op.
	require.NoError(t, repo.RecordRedemption(ctx, coupon.ID, userID))

	var count int64
	require.NoError(t, db.Model(&models.CouponRedemption{}).Where("coupon_id = ?", coupon.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryFindEnrollmentsByOrderItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	instructor := newInstructor(t, db, "Edsger Dijkstra")
	course := newCourse(t, db, instructor, "graphs", decimal.NewFromInt(599))
	order := newOrder(t, instructor, course, "100004")
	require.NoError(t, repo.CreateOrder(ctx, order))

	itemID := order.Items[0].ID
	enrollment := &models.Enrollment{
		ID:           uuid.New(),
		PublicID:     uuid.NewString()[:6],
		CourseID:     course.ID,
		UserID:       *order.UserID,
		InstructorID: instructor.ID,
		OrderItemID:  itemID,
	}
	require.NoError(t, db.Create(enrollment).Error)

	rows, err := repo.FindEnrollmentsByOrderItems(ctx, []uuid.UUID{itemID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enrollment.ID, rows[0].ID)

	rows, err = repo.FindEnrollmentsByOrderItems(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
