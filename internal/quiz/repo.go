package quiz

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a quiz repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *repositoryImpl) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", quiz.ID).
		Updates(map[string]any{
			"title":              quiz.Title,
			"description":        quiz.Description,
			"time_limit_minutes": quiz.TimeLimitMinutes,
			"shuffle_questions":  quiz.ShuffleQuestions,
			"min_pass_points":    quiz.MinPassPoints,
			"max_attempts":       quiz.MaxAttempts,
		}).Error
}

func (r *repositoryImpl) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", quizID).
		Delete(&models.Quiz{}).Error
}

func (r *repositoryImpl) FindQuizByPublicID(ctx context.Context, publicID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("public_id = ?", publicID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *repositoryImpl) FindQuizByID(ctx context.Context, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Where("id = ?", quizID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *repositoryImpl) FindQuizByCourse(ctx context.Context, courseID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *repositoryImpl) QuizPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	return r.publicIDExists(ctx, &models.Quiz{}, publicID)
}

func (r *repositoryImpl) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *repositoryImpl) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.QuizQuestion{}).
			Where("id = ?", question.ID).
			Updates(map[string]any{
				"text":     question.Text,
				"points":   question.Points,
				"position": question.Position,
			}).Error
		if err != nil {
			return err
		}
		if len(question.Options) == 0 {
			return nil
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.QuizOption{}).Error; err != nil {
			return err
		}
		for i := range question.Options {
			question.Options[i].QuestionID = question.ID
		}
		return tx.Create(&question.Options).Error
	})
}

func (r *repositoryImpl) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", questionID).
		Delete(&models.QuizQuestion{}).Error
}

func (r *repositoryImpl) FindQuestionByPublicID(ctx context.Context, quizID uuid.UUID, publicID string) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("quiz_id = ? AND public_id = ?", quizID, publicID).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *repositoryImpl) ListQuestions(ctx context.Context, quizID uuid.UUID) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("quiz_id = ?", quizID).
		Order("position ASC, created_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *repositoryImpl) CountAttempts(ctx context.Context, quizID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *repositoryImpl) FindAttemptByPublicID(ctx context.Context, publicID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("public_id = ?", publicID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *repositoryImpl) ListAttemptsByUser(ctx context.Context, quizID, userID uuid.UUID) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *repositoryImpl) ListAttempts(ctx context.Context, quizID uuid.UUID) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("completed_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *repositoryImpl) AttemptPublicIDExists(ctx context.Context, publicID string) (bool, error) {
	return r.publicIDExists(ctx, &models.QuizAttempt{}, publicID)
}

func (r *repositoryImpl) publicIDExists(ctx context.Context, model any, publicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("public_id = ?", publicID).
		Count(&count).Error
	return count > 0, err
}
