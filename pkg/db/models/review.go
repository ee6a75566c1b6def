package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a learner's rating of a course, optionally answered by the
// instructor.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Body      string    `gorm:"column:body;type:text;not null"`
	Reply     *string   `gorm:"column:reply;type:text"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
