package models

import (
	"time"

	"github.com/google/uuid"
)

// Section is one curriculum block inside a course.
type Section struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID  string    `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;type:text;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Lessons   []Lesson  `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
