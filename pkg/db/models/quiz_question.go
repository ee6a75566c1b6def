package models

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion is one scored question on a quiz.
type QuizQuestion struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID  string       `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	QuizID    uuid.UUID    `gorm:"column:quiz_id;type:uuid;not null;index"`
	Text      string       `gorm:"column:text;type:text;not null"`
	Points    int          `gorm:"column:points;not null;default:1"`
	Position  int          `gorm:"column:position;not null;default:0"`
	Options   []QuizOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// CorrectOption returns the loaded option flagged correct, if any.
func (q QuizQuestion) CorrectOption() *QuizOption {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// QuizOption is one selectable answer on a question.
type QuizOption struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID   string    `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	QuestionID uuid.UUID `gorm:"column:question_id;type:uuid;not null;index"`
	Text       string    `gorm:"column:text;type:text;not null"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
