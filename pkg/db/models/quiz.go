package models

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is the single assessment attached to a course.
type Quiz struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID         string         `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	CourseID         uuid.UUID      `gorm:"column:course_id;type:uuid;not null;uniqueIndex"`
	InstructorID     uuid.UUID      `gorm:"column:instructor_id;type:uuid;not null;index"`
	Title            string         `gorm:"column:title;type:text;not null"`
	Description      *string        `gorm:"column:description;type:text"`
	TimeLimitMinutes *int           `gorm:"column:time_limit_minutes"`
	ShuffleQuestions bool           `gorm:"column:shuffle_questions;not null;default:false"`
	MinPassPoints    int            `gorm:"column:min_pass_points;not null;default:0"`
	MaxAttempts      int            `gorm:"column:max_attempts;not null;default:3"`
	Questions        []QuizQuestion `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalPoints sums the points of the loaded questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}
