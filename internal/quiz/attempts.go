package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

// TakeView is the learner-facing quiz payload with answer keys removed.
type TakeView struct {
	PublicID         string         `json:"quiz_id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	MaxAttempts      int            `json:"max_attempts"`
	TotalPoints      int            `json:"total_points"`
	Questions        []TakeQuestion `json:"questions"`
}

// TakeQuestion is one deliverable question.
type TakeQuestion struct {
	PublicID string       `json:"question_id"`
	Text     string       `json:"text"`
	Points   int          `json:"points"`
	Options  []TakeOption `json:"options"`
}

// TakeOption deliberately omits the correctness flag.
type TakeOption struct {
	PublicID string `json:"option_id"`
	Text     string `json:"text"`
}

// AnswerInput is one submitted answer keyed by public ids.
type AnswerInput struct {
	QuestionPublicID string
	OptionPublicID   string
}

// SubmitAttemptInput carries a full quiz submission.
type SubmitAttemptInput struct {
	QuizPublicID string
	UserID       uuid.UUID
	Answers      []AnswerInput
}

// AttemptResult is the scored breakdown of one attempt.
type AttemptResult struct {
	AttemptPublicID string         `json:"attempt_id"`
	AttemptNumber   int            `json:"attempt_number"`
	Score           int            `json:"score"`
	TotalPoints     int            `json:"total_points"`
	Percentage      float64        `json:"percentage"`
	Passed          bool           `json:"passed"`
	MinPassPoints   int            `json:"min_pass_points"`
	CompletedAt     time.Time      `json:"completed_at"`
	Summary         ResultSummary  `json:"summary"`
	Answers         []AnswerResult `json:"answers"`
}

// ResultSummary counts answer outcomes for an attempt.
type ResultSummary struct {
	Total      int `json:"total_questions"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Unanswered int `json:"unanswered"`
}

// AnswerResult is the per-question breakdown row.
type AnswerResult struct {
	QuestionPublicID string  `json:"question_id"`
	QuestionText     string  `json:"question_text"`
	Points           int     `json:"points"`
	SelectedOption   *string `json:"selected_option,omitempty"`
	CorrectOption    *string `json:"correct_option,omitempty"`
	IsCorrect        bool    `json:"is_correct"`
	Answered         bool    `json:"answered"`
}

// StudentStatus summarizes a learner's standing on a quiz.
type StudentStatus struct {
	HasAttempted      bool `json:"has_attempted"`
	TotalAttempts     int  `json:"total_attempts"`
	BestScore         int  `json:"best_score"`
	Passed            bool `json:"passed"`
	AttemptsRemaining int  `json:"attempts_remaining"`
	MaxAttempts       int  `json:"max_attempts"`
	MinPassPoints     int  `json:"min_pass_points"`
}

func (s *service) TakeQuiz(ctx context.Context, quizPublicID string) (*TakeView, error) {
	quiz, err := s.loadQuiz(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}

	questions := make([]TakeQuestion, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		options := make([]TakeOption, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, TakeOption{PublicID: option.PublicID, Text: option.Text})
		}
		questions = append(questions, TakeQuestion{
			PublicID: question.PublicID,
			Text:     question.Text,
			Points:   question.Points,
			Options:  options,
		})
	}

	return &TakeView{
		PublicID:         quiz.PublicID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		ShuffleQuestions: quiz.ShuffleQuestions,
		MaxAttempts:      quiz.MaxAttempts,
		TotalPoints:      quiz.TotalPoints(),
		Questions:        questions,
	}, nil
}

// SubmitAttempt scores a submission inside one transaction. The unique
// (quiz, user, attempt_number) index turns concurrent duplicate
// submissions into a conflict instead of a double attempt.
func (s *service) SubmitAttempt(ctx context.Context, input SubmitAttemptInput) (*models.QuizAttempt, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	quiz, err := s.loadQuiz(ctx, input.QuizPublicID)
	if err != nil {
		return nil, err
	}

	var attempt *models.QuizAttempt
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		prior, err := repo.CountAttempts(ctx, quiz.ID, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count attempts")
		}
		if int(prior) >= quiz.MaxAttempts {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "maximum attempts reached")
		}

		questionsByPublicID := make(map[string]*models.QuizQuestion, len(quiz.Questions))
		for i := range quiz.Questions {
			questionsByPublicID[quiz.Questions[i].PublicID] = &quiz.Questions[i]
		}

		score := 0
		answered := make(map[string]struct{}, len(input.Answers))
		answers := make([]models.QuizAnswer, 0, len(input.Answers))
		for _, submitted := range input.Answers {
			question, ok := questionsByPublicID[submitted.QuestionPublicID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "answer references an unknown question")
			}
			// One answer row per question; repeats would double-count
			// its points.
			if _, dup := answered[submitted.QuestionPublicID]; dup {
				return pkgerrors.New(pkgerrors.CodeValidation, "duplicate answer for question")
			}
			answered[submitted.QuestionPublicID] = struct{}{}

			var (
				selectedID *uuid.UUID
				correct    bool
			)
			for i := range question.Options {
				if question.Options[i].PublicID == submitted.OptionPublicID {
					selectedID = &question.Options[i].ID
					correct = question.Options[i].IsCorrect
					break
				}
			}
			if correct {
				score += question.Points
			}
			answers = append(answers, models.QuizAnswer{
				QuestionID:       question.ID,
				SelectedOptionID: selectedID,
				IsCorrect:        correct,
			})
		}

		publicID, err := s.freshAttemptID(ctx, repo)
		if err != nil {
			return err
		}
		attempt = &models.QuizAttempt{
			PublicID:      publicID,
			QuizID:        quiz.ID,
			UserID:        input.UserID,
			AttemptNumber: int(prior) + 1,
			Score:         score,
			CompletedAt:   time.Now().UTC(),
			Answers:       answers,
		}
		if err := repo.CreateAttempt(ctx, attempt); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "attempt already submitted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attempt")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *service) ListAttempts(ctx context.Context, quizPublicID string, userID uuid.UUID) ([]models.QuizAttempt, error) {
	quiz, err := s.loadQuiz(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListAttemptsByUser(ctx, quiz.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attempts")
	}
	return attempts, nil
}

// BestAttempt returns the highest-scoring attempt, ties broken by the
// earliest completion.
func (s *service) BestAttempt(ctx context.Context, quizPublicID string, userID uuid.UUID) (*models.QuizAttempt, error) {
	attempts, err := s.ListAttempts(ctx, quizPublicID, userID)
	if err != nil {
		return nil, err
	}
	best := bestOf(attempts)
	if best == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no attempts yet")
	}
	return best, nil
}

func (s *service) AttemptResult(ctx context.Context, attemptPublicID string, userID uuid.UUID) (*AttemptResult, error) {
	if !shortid.IsValid(attemptPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid attempt id")
	}

	attempt, err := s.repo.FindAttemptByPublicID(ctx, attemptPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attempt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attempt")
	}
	if attempt.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "attempt belongs to another user")
	}

	questions, err := s.repo.ListQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load questions")
	}

	quiz, err := s.quizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answersByQuestion := make(map[uuid.UUID]*models.QuizAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		answersByQuestion[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	totalPoints := 0
	summary := ResultSummary{Total: len(questions)}
	results := make([]AnswerResult, 0, len(questions))
	for _, question := range questions {
		totalPoints += question.Points

		row := AnswerResult{
			QuestionPublicID: question.PublicID,
			QuestionText:     question.Text,
			Points:           question.Points,
		}
		if correct := question.CorrectOption(); correct != nil {
			text := correct.Text
			row.CorrectOption = &text
		}

		answer, answered := answersByQuestion[question.ID]
		if !answered {
			summary.Unanswered++
			results = append(results, row)
			continue
		}
		row.Answered = true
		row.IsCorrect = answer.IsCorrect
		if answer.SelectedOptionID != nil {
			for _, option := range question.Options {
				if option.ID == *answer.SelectedOptionID {
					text := option.Text
					row.SelectedOption = &text
					break
				}
			}
		}
		if answer.IsCorrect {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
		results = append(results, row)
	}

	percentage := 0.0
	if totalPoints > 0 {
		percentage = float64(attempt.Score) / float64(totalPoints) * 100
	}

	return &AttemptResult{
		AttemptPublicID: attempt.PublicID,
		AttemptNumber:   attempt.AttemptNumber,
		Score:           attempt.Score,
		TotalPoints:     totalPoints,
		Percentage:      percentage,
		Passed:          attempt.Score >= quiz.MinPassPoints,
		MinPassPoints:   quiz.MinPassPoints,
		CompletedAt:     attempt.CompletedAt,
		Summary:         summary,
		Answers:         results,
	}, nil
}

func (s *service) StudentStatus(ctx context.Context, quizPublicID string, userID uuid.UUID) (*StudentStatus, error) {
	quiz, err := s.loadQuiz(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListAttemptsByUser(ctx, quiz.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attempts")
	}

	status := &StudentStatus{
		HasAttempted:  len(attempts) > 0,
		TotalAttempts: len(attempts),
		MaxAttempts:   quiz.MaxAttempts,
		MinPassPoints: quiz.MinPassPoints,
	}
	for _, attempt := range attempts {
		if attempt.Score > status.BestScore {
			status.BestScore = attempt.Score
		}
		if attempt.Score >= quiz.MinPassPoints {
			status.Passed = true
		}
	}
	if remaining := quiz.MaxAttempts - len(attempts); remaining > 0 {
		status.AttemptsRemaining = remaining
	}
	return status, nil
}

func (s *service) quizByID(ctx context.Context, quizID uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.repo.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quiz")
	}
	return quiz, nil
}

func bestOf(attempts []models.QuizAttempt) *models.QuizAttempt {
	var best *models.QuizAttempt
	for i := range attempts {
		candidate := &attempts[i]
		if best == nil ||
			candidate.Score > best.Score ||
			(candidate.Score == best.Score && candidate.CompletedAt.Before(best.CompletedAt)) {
			best = candidate
		}
	}
	return best
}
