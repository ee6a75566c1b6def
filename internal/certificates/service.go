package certificates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

const publicIDAttempts = 5

// Service issues and verifies completion certificates.
type Service interface {
	Issue(ctx context.Context, userID uuid.UUID, coursePublicID string) (*IssueResult, []notifications.Event, error)
	Verify(ctx context.Context, certPublicID string) (*Verification, error)
	Revoke(ctx context.Context, certPublicID string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	GetForUser(ctx context.Context, certPublicID string, userID uuid.UUID) (*models.Certificate, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	siteURL string
}

// NewService builds a certificates service backed by the provided stack.
func NewService(repo Repository, tx txRunner, siteURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("certificates repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if siteURL == "" {
		return nil, fmt.Errorf("frontend site url required")
	}
	return &service{repo: repo, tx: tx, siteURL: siteURL}, nil
}

// IssueResult distinguishes a fresh issue from an idempotent replay.
type IssueResult struct {
	Certificate *models.Certificate `json:"certificate"`
	Issued      bool                `json:"issued"`
}

// Verification is the public verification payload.
type Verification struct {
	Verified    bool                `json:"verified"`
	Status      string              `json:"status,omitempty"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

// Issue grants a certificate once every lesson of the course is
// completed. Replays return the existing certificate unchanged.
func (s *service) Issue(ctx context.Context, userID uuid.UUID, coursePublicID string) (*IssueResult, []notifications.Event, error) {
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	course, err := s.repo.FindCourseByPublicID(ctx, coursePublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course")
	}

	if existing, err := s.repo.FindByUserAndCourse(ctx, userID, course.ID); err == nil {
		return &IssueResult{Certificate: existing, Issued: false}, nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}

	enrolled, err := s.repo.EnrollmentExists(ctx, userID, course.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check enrollment")
	}
	if !enrolled {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not enrolled in this course")
	}

	totalLessons, err := s.repo.CountLessons(ctx, course.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count lessons")
	}
	completedLessons, err := s.repo.CountCompletedLessons(ctx, userID, course.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed lessons")
	}

	// a course with no lessons can never be completed
	if totalLessons == 0 || completedLessons < totalLessons {
		percentage := 0.0
		if totalLessons > 0 {
			percentage = math.Round(float64(completedLessons)/float64(totalLessons)*10000) / 100
		}
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "course is not completed").
			WithDetails(map[string]any{
				"completed_lessons":     completedLessons,
				"total_lectures":        totalLessons,
				"completion_percentage": percentage,
			})
	}

	var certificate *models.Certificate
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		publicID, err := s.freshPublicID(ctx, repo)
		if err != nil {
			return err
		}
		certificate = &models.Certificate{
			PublicID:        publicID,
			UserID:          userID,
			CourseID:        course.ID,
			StudentName:     user.FullName,
			CourseName:      course.Title,
			CompletionDate:  time.Now().UTC(),
			Status:          enums.CertificateStatusActive,
			VerificationURL: fmt.Sprintf("%s/verify-certificate/%s", s.siteURL, publicID),
		}
		if err := repo.Create(ctx, certificate); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "certificate already issued")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certificate")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	events := []notifications.Event{
		notifications.CertificateIssuedEvent(userID).WithEmail(notifications.EmailMessage{
			To:        user.Email,
			Subject:   "Your certificate is ready",
			PlainText: fmt.Sprintf("Congratulations on completing %s. Verify your certificate at %s", course.Title, certificate.VerificationURL),
		}),
		notifications.CertificateIssuedInstructorEvent(course.InstructorID),
	}
	return &IssueResult{Certificate: certificate, Issued: true}, events, nil
}

func (s *service) Verify(ctx context.Context, certPublicID string) (*Verification, error) {
	if !shortid.IsValid(certPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid certificate id")
	}

	certificate, err := s.repo.FindByPublicID(ctx, certPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}

	if certificate.Status != enums.CertificateStatusActive {
		return &Verification{
			Verified: false,
			Status:   certificate.Status.String(),
		}, nil
	}
	return &Verification{
		Verified:    true,
		Status:      certificate.Status.String(),
		Certificate: certificate,
	}, nil
}

// Revoke moves an active certificate to revoked. Revoked and expired
// certificates are terminal.
func (s *service) Revoke(ctx context.Context, certPublicID string) (*models.Certificate, error) {
	if !shortid.IsValid(certPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid certificate id")
	}

	certificate, err := s.repo.FindByPublicID(ctx, certPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}
	if certificate.Status != enums.CertificateStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "certificate is not active")
	}

	if err := s.repo.UpdateStatus(ctx, certificate.ID, enums.CertificateStatusRevoked.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke certificate")
	}
	certificate.Status = enums.CertificateStatusRevoked
	return certificate, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	certificates, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certificates")
	}
	return certificates, nil
}

func (s *service) GetForUser(ctx context.Context, certPublicID string, userID uuid.UUID) (*models.Certificate, error) {
	if !shortid.IsValid(certPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid certificate id")
	}
	certificate, err := s.repo.FindByPublicID(ctx, certPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}
	if certificate.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "certificate belongs to another user")
	}
	return certificate, nil
}

func (s *service) freshPublicID(ctx context.Context, repo Repository) (string, error) {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		candidate, err := shortid.New()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate certificate id")
		}
		exists, err := repo.PublicIDExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check certificate id")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate certificate id")
}
