package models

import (
	"time"

	"github.com/google/uuid"
)

// QuizAttempt is one completed submission of a quiz. Attempt numbers are
// dense per (quiz, user); the unique triple rejects concurrent duplicates.
type QuizAttempt struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID      string       `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	QuizID        uuid.UUID    `gorm:"column:quiz_id;type:uuid;not null;index;uniqueIndex:quiz_attempts_quiz_user_number_key"`
	UserID        uuid.UUID    `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:quiz_attempts_quiz_user_number_key"`
	AttemptNumber int          `gorm:"column:attempt_number;not null;uniqueIndex:quiz_attempts_quiz_user_number_key"`
	Score         int          `gorm:"column:score;not null;default:0"`
	CompletedAt   time.Time    `gorm:"column:completed_at;not null"`
	Answers       []QuizAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
}

// QuizAnswer records the option a learner picked for one question.
// Unanswered questions have no row.
type QuizAnswer struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttemptID        uuid.UUID  `gorm:"column:attempt_id;type:uuid;not null;index"`
	QuestionID       uuid.UUID  `gorm:"column:question_id;type:uuid;not null"`
	SelectedOptionID *uuid.UUID `gorm:"column:selected_option_id;type:uuid"`
	IsCorrect        bool       `gorm:"column:is_correct;not null;default:false"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
}
