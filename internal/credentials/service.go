package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/shortid"
)

// Service records minted on-chain tokens for enrollments and
// certificates. Minting itself happens off-platform; this service is the
// system of record for the resulting asset pointers.
type Service interface {
	MintEnrollmentToken(ctx context.Context, input MintInput) (*models.CourseToken, []notifications.Event, error)
	TokenForEnrollment(ctx context.Context, userID uuid.UUID, enrollmentPublicID string) (*models.CourseToken, error)

	MintCertificateToken(ctx context.Context, input MintInput) (*models.CertificateToken, []notifications.Event, error)
	TokenForCertificate(ctx context.Context, certPublicID string) (*CertificateTokenView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the credentials service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credentials repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// MintInput carries a freshly minted asset. TargetPublicID is the
// enrollment or certificate short id depending on the operation.
type MintInput struct {
	TargetPublicID string  `json:"target_id" validate:"required"`
	PolicyID       string  `json:"policy_id" validate:"required"`
	AssetID        string  `json:"asset_id" validate:"required"`
	AssetName      string  `json:"asset_name" validate:"required"`
	TxHash         string  `json:"tx_hash" validate:"required"`
	ImageURL       *string `json:"image_url"`
}

// CertificateTokenView pairs a certificate token with the certificate's
// current verification state.
type CertificateTokenView struct {
	Token    *models.CertificateToken `json:"token"`
	Verified bool                     `json:"verified"`
	Status   string                   `json:"status"`
}

func (input MintInput) validate() error {
	if !shortid.IsValid(input.TargetPublicID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid target id")
	}
	if strings.TrimSpace(input.PolicyID) == "" ||
		strings.TrimSpace(input.AssetID) == "" ||
		strings.TrimSpace(input.AssetName) == "" ||
		strings.TrimSpace(input.TxHash) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "policy id, asset id, asset name and tx hash are required")
	}
	return nil
}

// MintEnrollmentToken stores the token for one enrollment. The unique
// enrollment and asset id columns make replays and copy-paste mints
// conflict instead of duplicating.
func (s *service) MintEnrollmentToken(ctx context.Context, input MintInput) (*models.CourseToken, []notifications.Event, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}

	enrollment, err := s.repo.FindEnrollmentByPublicID(ctx, input.TargetPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enrollment")
	}

	taken, err := s.repo.CourseAssetIDExists(ctx, input.AssetID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset id")
	}
	if taken {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "asset id already recorded")
	}

	var token *models.CourseToken
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		token = &models.CourseToken{
			EnrollmentID: enrollment.ID,
			UserID:       enrollment.UserID,
			CourseID:     enrollment.CourseID,
			PolicyID:     input.PolicyID,
			AssetID:      input.AssetID,
			AssetName:    input.AssetName,
			TxHash:       input.TxHash,
			ImageURL:     input.ImageURL,
		}
		if err := repo.CreateCourseToken(ctx, token); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "enrollment already has a token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create course token")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	events := []notifications.Event{
		notifications.TokenMintedEvent(enrollment.UserID),
		notifications.TokenMintedInstructorEvent(enrollment.InstructorID),
	}
	return token, events, nil
}

// TokenForEnrollment returns the minted token for the caller's own
// enrollment.
func (s *service) TokenForEnrollment(ctx context.Context, userID uuid.UUID, enrollmentPublicID string) (*models.CourseToken, error) {
	if !shortid.IsValid(enrollmentPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid enrollment id")
	}

	enrollment, err := s.repo.FindEnrollmentByPublicID(ctx, enrollmentPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load enrollment")
	}
	if enrollment.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "enrollment belongs to another user")
	}

	token, err := s.repo.FindCourseTokenByEnrollment(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no token minted for this enrollment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load course token")
	}
	return token, nil
}

// MintCertificateToken stores the token for one certificate. Only active
// certificates can be tokenized.
func (s *service) MintCertificateToken(ctx context.Context, input MintInput) (*models.CertificateToken, []notifications.Event, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}

	certificate, err := s.repo.FindCertificateByPublicID(ctx, input.TargetPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}
	if certificate.Status != enums.CertificateStatusActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "certificate is not active")
	}

	taken, err := s.repo.CertificateAssetIDExists(ctx, input.AssetID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset id")
	}
	if taken {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "asset id already recorded")
	}

	var token *models.CertificateToken
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		token = &models.CertificateToken{
			CertificateID: certificate.ID,
			UserID:        certificate.UserID,
			CourseID:      certificate.CourseID,
			PolicyID:      input.PolicyID,
			AssetID:       input.AssetID,
			AssetName:     input.AssetName,
			TxHash:        input.TxHash,
			ImageURL:      input.ImageURL,
		}
		if err := repo.CreateCertificateToken(ctx, token); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "certificate already has a token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certificate token")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	events := []notifications.Event{
		notifications.TokenMintedEvent(certificate.UserID),
	}
	return token, events, nil
}

// TokenForCertificate resolves a certificate's token along with the
// certificate's current status, so a revoked certificate's token reads
// as unverified.
func (s *service) TokenForCertificate(ctx context.Context, certPublicID string) (*CertificateTokenView, error) {
	if !shortid.IsValid(certPublicID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid certificate id")
	}

	certificate, err := s.repo.FindCertificateByPublicID(ctx, certPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}

	token, err := s.repo.FindCertificateTokenByCertificate(ctx, certificate.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no token minted for this certificate")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate token")
	}

	return &CertificateTokenView{
		Token:    token,
		Verified: certificate.Status == enums.CertificateStatusActive,
		Status:   certificate.Status.String(),
	}, nil
}
