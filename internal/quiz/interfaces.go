package quiz

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

// Repository defines persistence operations for quizzes, questions and
// attempts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error)

	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *models.Quiz) error
	DeleteQuiz(ctx context.Context, quizID uuid.UUID) error
	FindQuizByPublicID(ctx context.Context, publicID string) (*models.Quiz, error)
	FindQuizByID(ctx context.Context, quizID uuid.UUID) (*models.Quiz, error)
	FindQuizByCourse(ctx context.Context, courseID uuid.UUID) (*models.Quiz, error)
	QuizPublicIDExists(ctx context.Context, publicID string) (bool, error)

	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) error
	FindQuestionByPublicID(ctx context.Context, quizID uuid.UUID, publicID string) (*models.QuizQuestion, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.QuizQuestion, error)

	CountAttempts(ctx context.Context, quizID, userID uuid.UUID) (int64, error)
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	FindAttemptByPublicID(ctx context.Context, publicID string) (*models.QuizAttempt, error)
	ListAttemptsByUser(ctx context.Context, quizID, userID uuid.UUID) ([]models.QuizAttempt, error)
	ListAttempts(ctx context.Context, quizID uuid.UUID) ([]models.QuizAttempt, error)
	AttemptPublicIDExists(ctx context.Context, publicID string) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
