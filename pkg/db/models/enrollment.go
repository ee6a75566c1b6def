package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment grants a learner access to a purchased course. The unique
// pair on (user_id, order_item_id) keeps payment confirmation replays
// from duplicating access.
type Enrollment struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID     string     `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	CourseID     uuid.UUID  `gorm:"column:course_id;type:uuid;not null;index"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:enrollments_user_order_item_key"`
	InstructorID uuid.UUID  `gorm:"column:instructor_id;type:uuid;not null;index"`
	OrderItemID  uuid.UUID  `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex:enrollments_user_order_item_key"`
	Course       *Course    `gorm:"foreignKey:CourseID"`
	OrderItem    *OrderItem `gorm:"foreignKey:OrderItemID"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
