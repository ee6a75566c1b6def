package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one course held in a browser cart session. The unique pair
// on (cart_session_id, course_id) makes repeated adds an update in place.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartSessionID string          `gorm:"column:cart_session_id;type:text;not null;index:cart_items_session_idx;uniqueIndex:cart_items_session_course_key"`
	CourseID      uuid.UUID       `gorm:"column:course_id;type:uuid;not null;uniqueIndex:cart_items_session_course_key"`
	UserID        *uuid.UUID      `gorm:"column:user_id;type:uuid"`
	Country       string          `gorm:"column:country;type:text;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	TaxFee        decimal.Decimal `gorm:"column:tax_fee;type:numeric(12,2);not null"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Course        *Course         `gorm:"foreignKey:CourseID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
