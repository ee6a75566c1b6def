package models

import (
	"time"

	"github.com/google/uuid"
)

// Instructor is the teaching profile attached to a user. Courses, coupons
// and earnings hang off this row rather than the user directly.
type Instructor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;type:text;not null"`
	Bio       *string   `gorm:"column:bio;type:text"`
	Country   *string   `gorm:"column:country;type:text"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
