package enrollments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const notePublicIDAttempts = 5

// Service covers a learner's enrollments, lesson progress, study notes
// and wishlist.
type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	GetByPublicID(ctx context.Context, userID uuid.UUID, publicID string) (*EnrollmentView, error)
	Summary(ctx context.Context, userID uuid.UUID) (*LearnerSummary, error)
	ToggleLessonComplete(ctx context.Context, userID uuid.UUID, coursePublicID, lessonPublicID string) (*ToggleResult, error)

	CreateNote(ctx context.Context, userID uuid.UUID, input NoteInput) (*models.Note, error)
	UpdateNote(ctx context.Context, userID uuid.UUID, notePublicID string, input NoteInput) (*models.Note, error)
	DeleteNote(ctx context.Context, userID uuid.UUID, notePublicID string) error
	ListNotes(ctx context.Context, userID uuid.UUID, coursePublicID string) ([]models.Note, error)

	ToggleWishlist(ctx context.Context, userID uuid.UUID, coursePublicID string) (*ToggleResult, error)
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the enrollments service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("enrollments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// EnrollmentView is one enrollment with the learner's progress through
// the course attached.
type EnrollmentView struct {
	Enrollment         *models.Enrollment `json:"enrollment"`
	TotalLessons       int64              `json:"total_lessons"`
	CompletedLessons   int64              `json:"completed_lessons"`
	CompletedLessonIDs []uuid.UUID        `json:"completed_lesson_ids"`
}

// LearnerSummary aggregates a learner's dashboard counters.
type LearnerSummary struct {
	TotalCourses     int64 `json:"total_courses"`
	CompletedLessons int64 `json:"completed_lessons"`
	Certificates     int64 `json:"certificates"`
}

// ToggleResult reports which way a toggle landed.
type ToggleResult struct {
	Message string `json:"message"`
	Added   bool   `json:"added"`
}

// NoteInput carries the writable note fields.
type NoteInput struct {
	CoursePublicID string `json:"course_id" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
	Body           string `json:"body" validate:"required"`
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list enrollments")
	}
	return enrollments, nil
}

func (s *service) GetByPublicID(ctx context.Context, userID uuid.UUID, publicID string) (*EnrollmentView, error) {
	if !shortid.IsValid(publicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid enrollment id")
	}

	enrollment, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enrollment")
	}
	if enrollment.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "enrollment belongs to another user")
	}

	totalLessons, err := s.repo.CountLessons(ctx, enrollment.CourseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count lessons")
	}
	completedIDs, err := s.repo.ListCompletedLessonIDs(ctx, userID, enrollment.CourseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list completed lessons")
	}

	return &EnrollmentView{
		Enrollment:         enrollment,
		TotalLessons:       totalLessons,
		CompletedLessons:   int64(len(completedIDs)),
		CompletedLessonIDs: completedIDs,
	}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*LearnerSummary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	courses, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count enrollments")
	}
	completed, err := s.repo.CountCompletedLessons(ctx, userID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed lessons")
	}
	certificates, err := s.repo.CountCertificates(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count certificates")
	}

	return &LearnerSummary{
		TotalCourses:     courses,
		CompletedLessons: completed,
		Certificates:     certificates,
	}, nil
}

// ToggleLessonComplete flips one lesson's completion state. An existing
// completion row is removed; a missing one is created.
func (s *service) ToggleLessonComplete(ctx context.Context, userID uuid.UUID, coursePublicID, lessonPublicID string) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	course, err := s.loadCourse(ctx, coursePublicID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, userID, course.ID); err != nil {
		return nil, err
	}

	lesson, err := s.repo.FindLessonByPublicID(ctx, course.ID, lessonPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lesson")
	}

	var result *ToggleResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deleted, err := repo.DeleteCompletedLesson(ctx, userID, lesson.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove completed lesson")
		}
		if deleted > 0 {
			result = &ToggleResult{Message: "lesson marked as not completed", Added: false}
			return nil
		}

		completed := &models.CompletedLesson{
			UserID:   userID,
			LessonID: lesson.ID,
			CourseID: course.ID,
		}
		if err := repo.CreateCompletedLesson(ctx, completed); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "lesson already completed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completed lesson")
		}
		result = &ToggleResult{Message: "lesson marked as completed", Added: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CreateNote(ctx context.Context, userID uuid.UUID, input NoteInput) (*models.Note, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Title == "" || input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note title and body are required")
	}

	course, err := s.loadCourse(ctx, input.CoursePublicID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, userID, course.ID); err != nil {
		return nil, err
	}

	publicID, err := s.freshNoteID(ctx)
	if err != nil {
		return nil, err
	}
	note := &models.Note{
		PublicID: publicID,
		UserID:   userID,
		CourseID: course.ID,
		Title:    input.Title,
		Body:     input.Body,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create note")
	}
	return note, nil
}

func (s *service) UpdateNote(ctx context.Context, userID uuid.UUID, notePublicID string, input NoteInput) (*models.Note, error) {
	if !shortid.IsValid(notePublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid note id")
	}
	if input.Title == "" || input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note title and body are required")
	}

	note, err := s.repo.FindNoteByPublicID(ctx, userID, notePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "note not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load note")
	}

	note.Title = input.Title
	note.Body = input.Body
	if err := s.repo.UpdateNote(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update note")
	}
	return note, nil
}

func (s *service) DeleteNote(ctx context.Context, userID uuid.UUID, notePublicID string) error {
	if !shortid.IsValid(notePublicID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid note id")
	}
	deleted, err := s.repo.DeleteNote(ctx, userID, notePublicID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete note")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "note not found")
	}
	return nil
}

func (s *service) ListNotes(ctx context.Context, userID uuid.UUID, coursePublicID string) ([]models.Note, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	course, err := s.loadCourse(ctx, coursePublicID)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, userID, course.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notes")
	}
	return notes, nil
}

// ToggleWishlist adds the course when absent and removes it when present.
func (s *service) ToggleWishlist(ctx context.Context, userID uuid.UUID, coursePublicID string) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	course, err := s.loadCourse(ctx, coursePublicID)
	if err != nil {
		return nil, err
	}

	var result *ToggleResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deleted, err := repo.DeleteWishlistItem(ctx, userID, course.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
		}
		if deleted > 0 {
			result = &ToggleResult{Message: "course removed from wishlist", Added: false}
			return nil
		}

		item := &models.WishlistItem{UserID: userID, CourseID: course.ID}
		if err := repo.CreateWishlistItem(ctx, item); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "course already wishlisted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
		}
		result = &ToggleResult{Message: "course added to wishlist", Added: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.repo.ListWishlist(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return items, nil
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

func (s *service) requireEnrollment(ctx context.Context, userID, courseID uuid.UUID) error {
	_, err := s.repo.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is not enrolled in this course")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check enrollment")
	}
	return nil
}

func (s *service) freshNoteID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < notePublicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate note id")
		}
		exists, err := s.repo.NotePublicIDExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check note id")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate note id")
}
