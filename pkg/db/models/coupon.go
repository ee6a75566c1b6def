package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is an instructor-scoped percentage discount. It only ever applies
// to order items taught by its owning instructor.
type Coupon struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InstructorID uuid.UUID `gorm:"column:instructor_id;type:uuid;not null;index"`
	Code         string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	Discount     int       `gorm:"column:discount;not null;default:1"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CouponRedemption records which users have consumed a coupon.
type CouponRedemption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID  uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;uniqueIndex:coupon_redemptions_coupon_user_key"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:coupon_redemptions_coupon_user_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
