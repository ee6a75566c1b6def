package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one course line on an order. Price stays the pre-discount
// snapshot; coupons only lower Total and raise Saved.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID      string          `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	CourseID      uuid.UUID       `gorm:"column:course_id;type:uuid;not null;index"`
	InstructorID  uuid.UUID       `gorm:"column:instructor_id;type:uuid;not null;index"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	TaxFee        decimal.Decimal `gorm:"column:tax_fee;type:numeric(12,2);not null"`
	InitialTotal  decimal.Decimal `gorm:"column:initial_total;type:numeric(12,2);not null"`
	Saved         decimal.Decimal `gorm:"column:saved;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	AppliedCoupon bool            `gorm:"column:applied_coupon;not null;default:false"`
	Course        *Course         `gorm:"foreignKey:CourseID"`
	Coupons       []Coupon        `gorm:"many2many:order_item_coupons"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
