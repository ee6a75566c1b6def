package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a private study note a learner keeps against a course.
type Note struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID  string    `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;type:text;not null"`
	Body      string    `gorm:"column:body;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
