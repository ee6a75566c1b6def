package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletedLesson marks one lesson as finished by one learner.
type CompletedLesson struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:completed_lessons_user_lesson_key"`
	LessonID  uuid.UUID `gorm:"column:lesson_id;type:uuid;not null;uniqueIndex:completed_lessons_user_lesson_key"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
