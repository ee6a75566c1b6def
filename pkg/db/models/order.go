package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// Order is a checkout snapshot covering one or more courses. Monetary
// aggregates are always recomputed from the items, never adjusted in
// place, so Total = SubTotal + TaxFee - Saved holds at every commit.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID         string              `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	UserID           *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	FullName         string              `gorm:"column:full_name;type:text;not null"`
	Email            string              `gorm:"column:email;type:text;not null"`
	Country          string              `gorm:"column:country;type:text;not null"`
	CartSessionID    string              `gorm:"column:cart_session_id;type:text;not null"`
	SubTotal         decimal.Decimal     `gorm:"column:sub_total;type:numeric(12,2);not null"`
	TaxFee           decimal.Decimal     `gorm:"column:tax_fee;type:numeric(12,2);not null"`
	InitialTotal     decimal.Decimal     `gorm:"column:initial_total;type:numeric(12,2);not null"`
	Saved            decimal.Decimal     `gorm:"column:saved;type:numeric(12,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'processing'"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;type:text"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id;type:text"`
	GatewaySignature *string             `gorm:"column:gateway_signature;type:text"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Instructors      []Instructor        `gorm:"many2many:order_instructors"`
	Coupons          []Coupon            `gorm:"many2many:order_coupons"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
