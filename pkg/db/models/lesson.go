package models

import (
	"time"

	"github.com/google/uuid"
)

// Lesson is one playable item inside a section. CourseID is denormalized
// so completion counting does not need to join through sections.
type Lesson struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID        string    `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	SectionID       uuid.UUID `gorm:"column:section_id;type:uuid;not null;index"`
	CourseID        uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	Title           string    `gorm:"column:title;type:text;not null"`
	Description     *string   `gorm:"column:description;type:text"`
	DurationSeconds int       `gorm:"column:duration_seconds;not null;default:0"`
	Preview         bool      `gorm:"column:preview;not null;default:false"`
	Position        int       `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
