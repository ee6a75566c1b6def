package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const publicIDAttempts = 5

// Service exposes quiz authoring, delivery and attempt scoring.
type Service interface {
	CreateQuiz(ctx context.Context, input CreateQuizInput) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, input UpdateQuizInput) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, quizPublicID string, instructorID uuid.UUID) error
	GetQuiz(ctx context.Context, quizPublicID string) (*models.Quiz, error)
	GetQuizByCourse(ctx context.Context, coursePublicID string) (*models.Quiz, error)

	CreateQuestion(ctx context.Context, input CreateQuestionInput) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, input UpdateQuestionInput) (*models.QuizQuestion, error)
	DeleteQuestion(ctx context.Context, quizPublicID, questionPublicID string, instructorID uuid.UUID) error
	ListQuestions(ctx context.Context, quizPublicID string) ([]models.QuizQuestion, error)

	TakeQuiz(ctx context.Context, quizPublicID string) (*TakeView, error)
	SubmitAttempt(ctx context.Context, input SubmitAttemptInput) (*models.QuizAttempt, error)
	ListAttempts(ctx context.Context, quizPublicID string, userID uuid.UUID) ([]models.QuizAttempt, error)
	BestAttempt(ctx context.Context, quizPublicID string, userID uuid.UUID) (*models.QuizAttempt, error)
	AttemptResult(ctx context.Context, attemptPublicID string, userID uuid.UUID) (*AttemptResult, error)
	StudentStatus(ctx context.Context, quizPublicID string, userID uuid.UUID) (*StudentStatus, error)
	Analytics(ctx context.Context, quizPublicID string) (*Analytics, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a quiz service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quiz repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateQuizInput configures a new course assessment.
type CreateQuizInput struct {
	CoursePublicID   string
	InstructorID     uuid.UUID
	Title            string
	Description      *string
	TimeLimitMinutes *int
	ShuffleQuestions bool
	MinPassPoints    int
	MaxAttempts      int
}

// UpdateQuizInput mutates quiz settings.
type UpdateQuizInput struct {
	QuizPublicID     string
	InstructorID     uuid.UUID
	Title            *string
	Description      *string
	TimeLimitMinutes *int
	ShuffleQuestions *bool
	MinPassPoints    *int
	MaxAttempts      *int
}

// OptionInput is one authored answer option.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// CreateQuestionInput adds a question with its options.
type CreateQuestionInput struct {
	QuizPublicID string
	InstructorID uuid.UUID
	Text         string
	Points       int
	Position     int
	Options      []OptionInput
}

// UpdateQuestionInput rewrites a question; providing options replaces
// the full option set.
type UpdateQuestionInput struct {
	QuizPublicID     string
	QuestionPublicID string
	InstructorID     uuid.UUID
	Text             *string
	Points           *int
	Position         *int
	Options          []OptionInput
}

func (s *service) CreateQuiz(ctx context.Context, input CreateQuizInput) (*models.Quiz, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quiz title required")
	}
	if input.MaxAttempts < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max attempts must be at least 1")
	}
	if input.MinPassPoints < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min pass points cannot be negative")
	}

	course, err := s.repo.FindCourseByPublicID(ctx, input.CoursePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if input.InstructorID != uuid.Nil && course.InstructorID != input.InstructorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "course belongs to another instructor")
	}

	publicID, err := s.freshQuizID(ctx)
	if err != nil {
		return nil, err
	}
	quiz := &models.Quiz{
		PublicID:         publicID,
		CourseID:         course.ID,
		InstructorID:     course.InstructorID,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		TimeLimitMinutes: input.TimeLimitMinutes,
		ShuffleQuestions: input.ShuffleQuestions,
		MinPassPoints:    input.MinPassPoints,
		MaxAttempts:      input.MaxAttempts,
	}
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "course already has a quiz")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quiz")
	}
	return quiz, nil
}

func (s *service) UpdateQuiz(ctx context.Context, input UpdateQuizInput) (*models.Quiz, error) {
	quiz, err := s.loadOwnedQuiz(ctx, input.QuizPublicID, input.InstructorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quiz title required")
		}
		quiz.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		quiz.Description = input.Description
	}
	if input.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = input.TimeLimitMinutes
	}
	if input.ShuffleQuestions != nil {
		quiz.ShuffleQuestions = *input.ShuffleQuestions
	}
	if input.MinPassPoints != nil {
		if *input.MinPassPoints < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min pass points cannot be negative")
		}
		quiz.MinPassPoints = *input.MinPassPoints
	}
	if input.MaxAttempts != nil {
		if *input.MaxAttempts < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max attempts must be at least 1")
		}
		quiz.MaxAttempts = *input.MaxAttempts
	}

	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quiz")
	}
	return quiz, nil
}

func (s *service) DeleteQuiz(ctx context.Context, quizPublicID string, instructorID uuid.UUID) error {
	quiz, err := s.loadOwnedQuiz(ctx, quizPublicID, instructorID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteQuiz(ctx, quiz.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete quiz")
	}
	return nil
}

func (s *service) GetQuiz(ctx context.Context, quizPublicID string) (*models.Quiz, error) {
	return s.loadQuiz(ctx, quizPublicID)
}

func (s *service) GetQuizByCourse(ctx context.Context, coursePublicID string) (*models.Quiz, error) {
	course, err := s.repo.FindCourseByPublicID(ctx, coursePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	quiz, err := s.repo.FindQuizByCourse(ctx, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quiz")
	}
	return s.loadQuiz(ctx, quiz.PublicID)
}

func (s *service) CreateQuestion(ctx context.Context, input CreateQuestionInput) (*models.QuizQuestion, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question text required")
	}
	if input.Points < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question points must be at least 1")
	}
	if err := validateOptions(input.Options); err != nil {
		return nil, err
	}

	quiz, err := s.loadOwnedQuiz(ctx, input.QuizPublicID, input.InstructorID)
	if err != nil {
		return nil, err
	}

	options := make([]models.QuizOption, 0, len(input.Options))
	for _, option := range input.Options {
		optionID, err := shortid.New()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate option id")
		}
		options = append(options, models.QuizOption{
			PublicID:  optionID,
			Text:      strings.TrimSpace(option.Text),
			IsCorrect: option.IsCorrect,
		})
	}

	questionID, err := shortid.New()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate question id")
	}
	question := &models.QuizQuestion{
		PublicID: questionID,
		QuizID:   quiz.ID,
		Text:     strings.TrimSpace(input.Text),
		Points:   input.Points,
		Position: input.Position,
		Options:  options,
	}
	if err := s.repo.CreateQuestion(ctx, question); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create question")
	}
	return question, nil
}

func (s *service) UpdateQuestion(ctx context.Context, input UpdateQuestionInput) (*models.QuizQuestion, error) {
	quiz, err := s.loadOwnedQuiz(ctx, input.QuizPublicID, input.InstructorID)
	if err != nil {
		return nil, err
	}
	question, err := s.repo.FindQuestionByPublicID(ctx, quiz.ID, input.QuestionPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "question not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load question")
	}

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "question text required")
		}
		question.Text = strings.TrimSpace(*input.Text)
	}
	if input.Points != nil {
		if *input.Points < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "question points must be at least 1")
		}
		question.Points = *input.Points
	}
	if input.Position != nil {
		question.Position = *input.Position
	}
	if len(input.Options) > 0 {
		if err := validateOptions(input.Options); err != nil {
			return nil, err
		}
		options := make([]models.QuizOption, 0, len(input.Options))
		for _, option := range input.Options {
			optionID, err := shortid.New()
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate option id")
			}
			options = append(options, models.QuizOption{
				PublicID:  optionID,
				Text:      strings.TrimSpace(option.Text),
				IsCorrect: option.IsCorrect,
			})
		}
		question.Options = options
	}

	if err := s.repo.UpdateQuestion(ctx, question); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update question")
	}
	return question, nil
}

func (s *service) DeleteQuestion(ctx context.Context, quizPublicID, questionPublicID string, instructorID uuid.UUID) error {
	quiz, err := s.loadOwnedQuiz(ctx, quizPublicID, instructorID)
	if err != nil {
		return err
	}
	question, err := s.repo.FindQuestionByPublicID(ctx, quiz.ID, questionPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "question not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load question")
	}
	if err := s.repo.DeleteQuestion(ctx, question.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete question")
	}
	return nil
}

func (s *service) ListQuestions(ctx context.Context, quizPublicID string) ([]models.QuizQuestion, error) {
	quiz, err := s.loadQuiz(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}
	return quiz.Questions, nil
}

// validateOptions enforces the authoring contract: at least two options
// and exactly one flagged correct.
func validateOptions(options []OptionInput) error {
	if len(options) < 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "a question needs at least two options")
	}
	correct := 0
	for _, option := range options {
		if strings.TrimSpace(option.Text) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "option text required")
		}
		if option.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one option must be correct")
	}
	return nil
}

func (s *service) loadQuiz(ctx context.Context, publicID string) (*models.Quiz, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quiz id")
	}
	quiz, err := s.repo.FindQuizByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quiz not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quiz")
	}
	return quiz, nil
}

func (s *service) loadOwnedQuiz(ctx context.Context, publicID string, instructorID uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.loadQuiz(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if instructorID != uuid.Nil && quiz.InstructorID != instructorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quiz belongs to another instructor")
	}
	return quiz, nil
}

func (s *service) freshQuizID(ctx context.Context) (string, error) {
	return s.freshID(ctx, s.repo.QuizPublicIDExists, "quiz")
}

func (s *service) freshAttemptID(ctx context.Context, repo Repository) (string, error) {
	return s.freshID(ctx, repo.AttemptPublicIDExists, "attempt")
}

func (s *service) freshID(ctx context.Context, exists func(context.Context, string) (bool, error), kind string) (string, error) {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate "+kind+" id")
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check "+kind+" id")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate "+kind+" id")
}
