package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

// Service manages course reviews and instructor replies.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, []notifications.Event, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*models.Review, error)
	ListForCourse(ctx context.Context, coursePublicID string) ([]models.Review, error)
	ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error)
	Reply(ctx context.Context, instructorID, reviewID uuid.UUID, reply string) (*models.Review, []notifications.Event, error)
}

type service struct {
	repo Repository
}

// NewService builds the reviews service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	return &service{repo: repo}, nil
}

// CreateInput carries a new review.
type CreateInput struct {
	CoursePublicID string `json:"course_id" validate:"required"`
	Rating         int    `json:"rating" validate:"required,min=1,max=5"`
	Body           string `json:"body" validate:"required"`
}

// UpdateInput carries the editable review fields.
type UpdateInput struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Body   string `json:"body" validate:"required"`
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Review, []notifications.Event, error) {
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.Body == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "review body required")
	}

	course, err := s.loadCourse(ctx, input.CoursePublicID)
	if err != nil {
		return nil, nil, err
	}

	enrolled, err := s.repo.EnrollmentExists(ctx, userID, course.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check enrollment")
	}
	if !enrolled {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only enrolled students can review a course")
	}

	if _, err := s.repo.FindByUserAndCourse(ctx, userID, course.ID); err == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "course already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}

	review := &models.Review{
		UserID:   userID,
		CourseID: course.ID,
		Rating:   input.Rating,
		Body:     input.Body,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "course already reviewed")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	events := []notifications.Event{
		notifications.NewReviewEvent(course.InstructorID, review.ID),
	}
	return review, events, nil
}

func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, input UpdateInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review body required")
	}

	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another user")
	}

	review.Rating = input.Rating
	review.Body = input.Body
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	return review, nil
}

func (s *service) ListForCourse(ctx context.Context, coursePublicID string) ([]models.Review, error) {
	course, err := s.loadCourse(ctx, coursePublicID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}

func (s *service) ListForInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Review, error) {
	if instructorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instructor id required")
	}
	reviews, err := s.repo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list instructor reviews")
	}
	return reviews, nil
}

// Reply records an instructor's answer on a review of one of their
// courses and notifies the reviewing learner.
func (s *service) Reply(ctx context.Context, instructorID, reviewID uuid.UUID, reply string) (*models.Review, []notifications.Event, error) {
	if reply == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "reply body required")
	}

	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}

	course, err := s.repo.FindCourseByID(ctx, review.CourseID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	if course.InstructorID != instructorID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another instructor's course")
	}

	if err := s.repo.SaveReply(ctx, review.ID, reply); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reply")
	}
	review.Reply = &reply

	events := []notifications.Event{
		notifications.ReviewReplyEvent(review.UserID, review.ID),
	}
	return review, events, nil
}

func (s *service) loadCourse(ctx context.Context, publicID string) (*models.Course, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid course id")
	}
	course, err := s.repo.FindCourseByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}
	return course, nil
}

func (s *service) loadReview(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id required")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}
