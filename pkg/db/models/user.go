package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the learner identity snapshot. Account lifecycle and
// credentials live in the identity provider; this row only carries what
// orders, enrollments and certificates need to reference.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;type:text;not null"`
	Country   *string   `gorm:"column:country;type:text"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
