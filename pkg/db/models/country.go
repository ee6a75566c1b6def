package models

import (
	"time"

	"github.com/google/uuid"
)

// Country holds the tax rate applied to orders shipped to that country.
// TaxRate is an integer percentage.
type Country struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	TaxRate   int       `gorm:"column:tax_rate;not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
