package credentials

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
)

type fakeRepository struct {
	enrollments  map[string]*models.Enrollment
	certificates map[string]*models.Certificate

	courseTokens map[uuid.UUID]*models.CourseToken
	courseAssets map[string]bool

	certTokens map[uuid.UUID]*models.CertificateToken
	certAssets map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		enrollments:  map[string]*models.Enrollment{},
		certificates: map[string]*models.Certificate{},
		courseTokens: map[uuid.UUID]*models.CourseToken{},
		courseAssets: map[string]bool{},
		certTokens:   map[uuid.UUID]*models.CertificateToken{},
		certAssets:   map[string]bool{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindEnrollmentByPublicID(ctx context.Context, publicID string) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (f *fakeRepository) FindCertificateByPublicID(ctx context.Context, publicID string) (*models.Certificate, error) {
	certificate, ok := f.certificates[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return certificate, nil
}

func (f *fakeRepository) CreateCourseToken(ctx context.Context, token *models.CourseToken) error {
	if _, ok := f.courseTokens[token.EnrollmentID]; ok {
		return duplicateErr{}
	}
	token.ID = uuid.New()
	f.courseTokens[token.EnrollmentID] = token
	f.courseAssets[token.AssetID] = true
	return nil
}

func (f *fakeRepository) FindCourseTokenByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*models.CourseToken, error) {
	token, ok := f.courseTokens[enrollmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (f *fakeRepository) CourseAssetIDExists(ctx context.Context, assetID string) (bool, error) {
	return f.courseAssets[assetID], nil
}

func (f *fakeRepository) CreateCertificateToken(ctx context.Context, token *models.CertificateToken) error {
	if _, ok := f.certTokens[token.CertificateID]; ok {
		return duplicateErr{}
	}
	token.ID = uuid.New()
	f.certTokens[token.CertificateID] = token
	f.certAssets[token.AssetID] = true
	return nil
}

func (f *fakeRepository) FindCertificateTokenByCertificate(ctx context.Context, certificateID uuid.UUID) (*models.CertificateToken, error) {
	token, ok := f.certTokens[certificateID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (f *fakeRepository) CertificateAssetIDExists(ctx context.Context, assetID string) (bool, error) {
	return f.certAssets[assetID], nil
}

type duplicateErr struct{}

func (duplicateErr) Error() string { return "duplicate key value violates unique constraint" }

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newCredentialsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedEnrollment(repo *fakeRepository) *models.Enrollment {
	enrollment := &models.Enrollment{
		ID:           uuid.New(),
		PublicID:     "111111",
		UserID:       uuid.New(),
		CourseID:     uuid.New(),
		InstructorID: uuid.New(),
	}
	repo.enrollments[enrollment.PublicID] = enrollment
	return enrollment
}

func mintInput(targetID string) MintInput {
	return MintInput{
		TargetPublicID: targetID,
		PolicyID:       "pol_9f2c",
		AssetID:        "asset1qxy8",
		AssetName:      "LMS-ENROLL-111111",
		TxHash:         "c1f4a9",
	}
}

func TestMintEnrollmentToken(t *testing.T) {
	repo := newFakeRepository()
	enrollment := seedEnrollment(repo)
	svc := newCredentialsService(t, repo)

	token, events, err := svc.MintEnrollmentToken(context.Background(), mintInput(enrollment.PublicID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.EnrollmentID != enrollment.ID || token.UserID != enrollment.UserID {
		t.Fatalf("token misattached: %+v", token)
	}
	if len(events) != 2 {
		t.Fatalf("expected learner + instructor events, got %d", len(events))
	}
	if events[0].UserID == nil || *events[0].UserID != enrollment.UserID {
		t.Fatalf("first event should target learner: %+v", events[0])
	}
	if events[1].InstructorID == nil || *events[1].InstructorID != enrollment.InstructorID {
		t.Fatalf("second event should target instructor: %+v", events[1])
	}
}

func TestMintEnrollmentTokenDuplicateEnrollment(t *testing.T) {
	repo := newFakeRepository()
	enrollment := seedEnrollment(repo)
	svc := newCredentialsService(t, repo)

	if _, _, err := svc.MintEnrollmentToken(context.Background(), mintInput(enrollment.PublicID)); err != nil {
		t.Fatalf("first mint failed: %v", err)
	}

	input := mintInput(enrollment.PublicID)
	input.AssetID = "asset1other"
	_, _, err := svc.MintEnrollmentToken(context.Background(), input)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMintEnrollmentTokenDuplicateAsset(t *testing.T) {
	repo := newFakeRepository()
	first := seedEnrollment(repo)
	second := &models.Enrollment{ID: uuid.New(), PublicID: "222222", UserID: uuid.New(), CourseID: uuid.New(), InstructorID: uuid.New()}
	repo.enrollments[second.PublicID] = second
	svc := newCredentialsService(t, repo)

	if _, _, err := svc.MintEnrollmentToken(context.Background(), mintInput(first.PublicID)); err != nil {
		t.Fatalf("first mint failed: %v", err)
	}

	_, _, err := svc.MintEnrollmentToken(context.Background(), mintInput(second.PublicID))
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on reused asset id, got %v", err)
	}
}

func TestMintEnrollmentTokenUnknownEnrollment(t *testing.T) {
	repo := newFakeRepository()
	svc := newCredentialsService(t, repo)

	_, _, err := svc.MintEnrollmentToken(context.Background(), mintInput("999999"))
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTokenForEnrollmentOwnership(t *testing.T) {
	repo := newFakeRepository()
	enrollment := seedEnrollment(repo)
	svc := newCredentialsService(t, repo)

	if _, _, err := svc.MintEnrollmentToken(context.Background(), mintInput(enrollment.PublicID)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	token, err := svc.TokenForEnrollment(context.Background(), enrollment.UserID, enrollment.PublicID)
	if err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if token.AssetID != "asset1qxy8" {
		t.Fatalf("unexpected token: %+v", token)
	}

	_, err = svc.TokenForEnrollment(context.Background(), uuid.New(), enrollment.PublicID)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMintCertificateTokenRequiresActive(t *testing.T) {
	repo := newFakeRepository()
	revoked := &models.Certificate{ID: uuid.New(), PublicID: "333333", UserID: uuid.New(), CourseID: uuid.New(), Status: enums.CertificateStatusRevoked}
	repo.certificates[revoked.PublicID] = revoked
	svc := newCredentialsService(t, repo)

	_, _, err := svc.MintCertificateToken(context.Background(), mintInput(revoked.PublicID))
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestTokenForCertificateMirrorsStatus(t *testing.T) {
	repo := newFakeRepository()
	certificate := &models.Certificate{ID: uuid.New(), PublicID: "444444", UserID: uuid.New(), CourseID: uuid.New(), Status: enums.CertificateStatusActive}
	repo.certificates[certificate.PublicID] = certificate
	svc := newCredentialsService(t, repo)

	if _, _, err := svc.MintCertificateToken(context.Background(), mintInput(certificate.PublicID)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	view, err := svc.TokenForCertificate(context.Background(), certificate.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Verified || view.Status != "active" {
		t.Fatalf("active certificate token should verify: %+v", view)
	}

	certificate.Status = enums.CertificateStatusRevoked
	view, err = svc.TokenForCertificate(context.Background(), certificate.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Verified || view.Status != "revoked" {
		t.Fatalf("revoked certificate token must not verify: %+v", view)
	}
}

func TestMintValidation(t *testing.T) {
	repo := newFakeRepository()
	enrollment := seedEnrollment(repo)
	svc := newCredentialsService(t, repo)

	input := mintInput(enrollment.PublicID)
	input.TxHash = ""
	_, _, err := svc.MintEnrollmentToken(context.Background(), input)
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, _, err = svc.MintEnrollmentToken(context.Background(), mintInput("not-an-id"))
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for malformed id, got %v", err)
	}
}
