package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/knowledgeledger/lms-backend/api/responses"
	"github.com/knowledgeledger/lms-backend/api/validators"
	quizsvc "github.com/knowledgeledger/lms-backend/internal/quiz"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

type quizCreateRequest struct {
	CourseID         string  `json:"course_id" validate:"required"`
	Title            string  `json:"title" validate:"required,max=200"`
	Description      *string `json:"description"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,min=1"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
	MinPassPoints    int     `json:"min_pass_points" validate:"min=0"`
	MaxAttempts      int     `json:"max_attempts" validate:"min=0"`
}

// QuizCreate attaches a quiz to one of the instructor's courses.
func QuizCreate(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quizCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quiz, err := svc.CreateQuiz(r.Context(), quizsvc.CreateQuizInput{
			CoursePublicID:   payload.CourseID,
			InstructorID:     iid,
			Title:            payload.Title,
			Description:      payload.Description,
			TimeLimitMinutes: payload.TimeLimitMinutes,
			ShuffleQuestions: payload.ShuffleQuestions,
			MinPassPoints:    payload.MinPassPoints,
			MaxAttempts:      payload.MaxAttempts,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quiz)
	}
}

type quizUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,max=200"`
	Description      *string `json:"description"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,min=1"`
	ShuffleQuestions *bool   `json:"shuffle_questions"`
	MinPassPoints    *int    `json:"min_pass_points" validate:"omitempty,min=0"`
	MaxAttempts      *int    `json:"max_attempts" validate:"omitempty,min=0"`
}

// QuizUpdate patches quiz settings.
func QuizUpdate(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quizUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quiz, err := svc.UpdateQuiz(r.Context(), quizsvc.UpdateQuizInput{
			QuizPublicID:     chi.URLParam(r, "quiz"),
			InstructorID:     iid,
			Title:            payload.Title,
			Description:      payload.Description,
			TimeLimitMinutes: payload.TimeLimitMinutes,
			ShuffleQuestions: payload.ShuffleQuestions,
			MinPassPoints:    payload.MinPassPoints,
			MaxAttempts:      payload.MaxAttempts,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quiz)
	}
}

// QuizDelete removes the quiz with its questions and attempts.
func QuizDelete(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteQuiz(r.Context(), chi.URLParam(r, "quiz"), iid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "quiz deleted"})
	}
}

// QuizDetail returns the authored quiz including correctness flags.
func QuizDetail(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := svc.GetQuiz(r.Context(), chi.URLParam(r, "quiz"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quiz)
	}
}

// QuizByCourse resolves the quiz attached to a course.
func QuizByCourse(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := svc.GetQuizByCourse(r.Context(), chi.URLParam(r, "course"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quiz)
	}
}

type questionOptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type questionCreateRequest struct {
	Text     string                  `json:"text" validate:"required"`
	Points   int                     `json:"points" validate:"required,min=1"`
	Position int                     `json:"position" validate:"min=0"`
	Options  []questionOptionRequest `json:"options" validate:"required,min=2,dive"`
}

// QuestionCreate adds a question with its option set.
func QuestionCreate(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload questionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		question, err := svc.CreateQuestion(r.Context(), quizsvc.CreateQuestionInput{
			QuizPublicID: chi.URLParam(r, "quiz"),
			InstructorID: iid,
			Text:         payload.Text,
			Points:       payload.Points,
			Position:     payload.Position,
			Options:      toOptionInputs(payload.Options),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, question)
	}
}

type questionUpdateRequest struct {
	Text     *string                 `json:"text"`
	Points   *int                    `json:"points" validate:"omitempty,min=1"`
	Position *int                    `json:"position" validate:"omitempty,min=0"`
	Options  []questionOptionRequest `json:"options" validate:"omitempty,min=2,dive"`
}

// QuestionUpdate rewrites a question; a provided option list replaces
// the previous one.
func QuestionUpdate(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload questionUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		question, err := svc.UpdateQuestion(r.Context(), quizsvc.UpdateQuestionInput{
			QuizPublicID:     chi.URLParam(r, "quiz"),
			QuestionPublicID: chi.URLParam(r, "question"),
			InstructorID:     iid,
			Text:             payload.Text,
			Points:           payload.Points,
			Position:         payload.Position,
			Options:          toOptionInputs(payload.Options),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, question)
	}
}

// QuestionDelete removes one question.
func QuestionDelete(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iid, err := instructorID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteQuestion(r.Context(), chi.URLParam(r, "quiz"), chi.URLParam(r, "question"), iid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "question deleted"})
	}
}

// QuestionList returns the authored questions in display order.
func QuestionList(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := svc.ListQuestions(r.Context(), chi.URLParam(r, "quiz"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, questions)
	}
}

// QuizTake serves the student-facing quiz view with correctness hidden.
func QuizTake(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.TakeQuiz(r.Context(), chi.URLParam(r, "quiz"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type attemptAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	OptionID   string `json:"option_id" validate:"required"`
}

type attemptSubmitRequest struct {
	UserID  string                 `json:"user_id"`
	Answers []attemptAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// AttemptSubmit scores a submission in one shot.
func AttemptSubmit(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload attemptSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, err := userID(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		answers := make([]quizsvc.AnswerInput, 0, len(payload.Answers))
		for _, a := range payload.Answers {
			answers = append(answers, quizsvc.AnswerInput{
				QuestionPublicID: a.QuestionID,
				OptionPublicID:   a.OptionID,
			})
		}

		attempt, err := svc.SubmitAttempt(r.Context(), quizsvc.SubmitAttemptInput{
			QuizPublicID: chi.URLParam(r, "quiz"),
			UserID:       uid,
			Answers:      answers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attempt)
	}
}

// AttemptList returns the caller's attempts for one quiz.
func AttemptList(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attempts, err := svc.ListAttempts(r.Context(), chi.URLParam(r, "quiz"), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempts)
	}
}

// AttemptBest returns the caller's highest-scoring attempt.
func AttemptBest(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attempt, err := svc.BestAttempt(r.Context(), chi.URLParam(r, "quiz"), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempt)
	}
}

// AttemptResult serves the per-question breakdown of one attempt.
func AttemptResult(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AttemptResult(r.Context(), chi.URLParam(r, "attempt"), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QuizStudentStatus reports pass state and remaining attempts for the
// caller.
func QuizStudentStatus(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.StudentStatus(r.Context(), chi.URLParam(r, "quiz"), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// QuizAnalytics aggregates attempt stats for the quiz owner.
func QuizAnalytics(svc quizsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analytics, err := svc.Analytics(r.Context(), chi.URLParam(r, "quiz"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics)
	}
}

func toOptionInputs(options []questionOptionRequest) []quizsvc.OptionInput {
	if options == nil {
		return nil
	}
	inputs := make([]quizsvc.OptionInput, 0, len(options))
	for _, o := range options {
		inputs = append(inputs, quizsvc.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return inputs
}
