package quiz

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

const topPerformerCount = 5

// Analytics aggregates attempt data across all students of a quiz.
type Analytics struct {
	QuizPublicID     string           `json:"quiz_id"`
	TotalStudents    int              `json:"total_students"`
	TotalAttempts    int              `json:"total_attempts"`
	AverageScore     float64          `json:"average_score"`
	PassRate         float64          `json:"pass_rate"`
	MinScore         int              `json:"min_score"`
	MaxScore         int              `json:"max_score"`
	StudentBreakdown []StudentSummary `json:"students"`
	TopPerformers    []StudentSummary `json:"top_performers"`
}

// StudentSummary is one student's best-attempt row in the analytics view.
type StudentSummary struct {
	UserID        uuid.UUID `json:"user_id"`
	Attempts      int       `json:"attempts"`
	BestScore     int       `json:"best_score"`
	BestAttemptID string    `json:"best_attempt_id"`
	Passed        bool      `json:"passed"`
}

// Analytics computes the instructor dashboard for a quiz. Best attempt
// per student is the highest score, ties broken by earliest completion.
func (s *service) Analytics(ctx context.Context, quizPublicID string) (*Analytics, error) {
	quiz, err := s.loadQuiz(ctx, quizPublicID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.ListAttempts(ctx, quiz.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attempts")
	}

	analytics := &Analytics{
		QuizPublicID:     quiz.PublicID,
		TotalAttempts:    len(attempts),
		StudentBreakdown: []StudentSummary{},
		TopPerformers:    []StudentSummary{},
	}
	if len(attempts) == 0 {
		return analytics, nil
	}

	byStudent := map[uuid.UUID][]models.QuizAttempt{}
	order := []uuid.UUID{}
	scoreSum := 0
	analytics.MinScore = attempts[0].Score
	for _, attempt := range attempts {
		if _, seen := byStudent[attempt.UserID]; !seen {
			order = append(order, attempt.UserID)
		}
		byStudent[attempt.UserID] = append(byStudent[attempt.UserID], attempt)
		scoreSum += attempt.Score
		if attempt.Score < analytics.MinScore {
			analytics.MinScore = attempt.Score
		}
		if attempt.Score > analytics.MaxScore {
			analytics.MaxScore = attempt.Score
		}
	}

	passing := 0
	for _, userID := range order {
		studentAttempts := byStudent[userID]
		best := bestOf(studentAttempts)
		summary := StudentSummary{
			UserID:        userID,
			Attempts:      len(studentAttempts),
			BestScore:     best.Score,
			BestAttemptID: best.PublicID,
			Passed:        best.Score >= quiz.MinPassPoints,
		}
		if summary.Passed {
			passing++
		}
		analytics.StudentBreakdown = append(analytics.StudentBreakdown, summary)
	}

	analytics.TotalStudents = len(order)
	analytics.AverageScore = float64(scoreSum) / float64(len(attempts))
	analytics.PassRate = float64(passing) / float64(len(order)) * 100

	ranked := make([]StudentSummary, len(analytics.StudentBreakdown))
	copy(ranked, analytics.StudentBreakdown)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestScore > ranked[j].BestScore
	})
	if len(ranked) > topPerformerCount {
		ranked = ranked[:topPerformerCount]
	}
	analytics.TopPerformers = ranked

	return analytics, nil
}
