package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a learner to a saved course.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:wishlist_items_user_id_idx;uniqueIndex:wishlist_items_user_course_key"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;index:wishlist_items_course_id_idx;uniqueIndex:wishlist_items_user_course_key"`
	Course    *Course   `gorm:"foreignKey:CourseID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
