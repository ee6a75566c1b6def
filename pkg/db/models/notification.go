package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/enums"
)

// Notification stores one in-app notification for a learner or an
// instructor. Exactly one of UserID/InstructorID is set.
type Notification struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       *uuid.UUID             `gorm:"column:user_id;type:uuid;index"`
	InstructorID *uuid.UUID             `gorm:"column:instructor_id;type:uuid;index"`
	OrderID      *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	OrderItemID  *uuid.UUID             `gorm:"column:order_item_id;type:uuid"`
	ReviewID     *uuid.UUID             `gorm:"column:review_id;type:uuid"`
	Type         enums.NotificationType `gorm:"column:type;type:text;not null"`
	Seen         bool                   `gorm:"column:seen;not null;default:false"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
}
