package certificates

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
	users        map[uuid.UUID]*models.User
	courses      map[string]*models.Course
	enrolled     map[uuid.UUID]bool
	lessons      int64
	completed    int64
	certificates map[string]*models.Certificate
	byUserCourse map[[2]uuid.UUID]*models.Certificate
	statusSet    string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:        map[uuid.UUID]*models.User{},
		courses:      map[string]*models.Course{},
		enrolled:     map[uuid.UUID]bool{},
		certificates: map[string]*models.Certificate{},
		byUserCourse: map[[2]uuid.UUID]*models.Certificate{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepository) FindCourseByPublicID(ctx context.Context, publicID string) (*models.Course, error) {
	course, ok := f.courses[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeRepository) EnrollmentExists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return f.enrolled[userID], nil
}

func (f *fakeRepository) CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	return f.lessons, nil
}

func (f *fakeRepository) CountCompletedLessons(ctx context.Context, userID, courseID uuid.UUID) (int64, error) {
	return f.completed, nil
}

func (f *fakeRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Certificate, error) {
	certificate, ok := f.byUserCourse[[2]uuid.UUID{userID, courseID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return certificate, nil
}

func (f *fakeRepository) FindByPublicID(ctx context.Context, publicID string) (*models.Certificate, error) {
	certificate, ok := f.certificates[publicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return certificate, nil
}

func (f *fakeRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	certificate.ID = uuid.New()
	f.certificates[certificate.PublicID] = certificate
	f.byUserCourse[[2]uuid.UUID{certificate.UserID, certificate.CourseID}] = certificate
	return nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, certificateID uuid.UUID, status string) error {
	f.statusSet = status
	return nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, certificate := range f.certificates {
		if certificate.UserID == userID {
			out = append(out, *certificate)
		}
	}
	return out, nil
}

func (f *fakeRepository) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	_, ok := f.certificates[publicID]
	return ok, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newCertService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, "https://learn.example.com")
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedCompletion(repo *fakeRepository) (uuid.UUID, *models.Course) {
	userID := uuid.New()
	repo.users[userID] = &models.User{ID: userID, FullName: "Asha Rao", Email: "asha@example.com", IsActive: true}
	course := &models.Course{ID: uuid.New(), PublicID: "111111", InstructorID: uuid.New(), Title: "Distributed Systems"}
	repo.courses[course.PublicID] = course
	repo.enrolled[userID] = true
	repo.lessons = 10
	repo.completed = 10
	return userID, course
}

func TestIssueCertificate(t *testing.T) {
	repo := newFakeRepository()
	userID, course := seedCompletion(repo)
	svc := newCertService(t, repo)

	result, events, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Issued {
		t.Fatal("expected fresh issue")
	}

	certificate := result.Certificate
	if certificate.StudentName != "Asha Rao" || certificate.CourseName != "Distributed Systems" {
		t.Fatalf("names not snapshotted: %+v", certificate)
	}
	if certificate.Status != enums.CertificateStatusActive {
		t.Fatalf("unexpected status %s", certificate.Status)
	}
	wantURL := "https://learn.example.com/verify-certificate/" + certificate.PublicID
	if certificate.VerificationURL != wantURL {
		t.Fatalf("unexpected verification url %s", certificate.VerificationURL)
	}
	if len(events) != 2 {
		t.Fatalf("expected learner + instructor events, got %d", len(events))
	}
}

func TestIssueIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	userID, course := seedCompletion(repo)
	svc := newCertService(t, repo)

	first, _, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}

	second, events, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.Issued {
		t.Fatal("replay must not issue again")
	}
	if second.Certificate.PublicID != first.Certificate.PublicID {
		t.Fatal("replay must return the original certificate")
	}
	if len(events) != 0 {
		t.Fatal("replay must not emit events")
	}
}

func TestIssueIncompleteCourse(t *testing.T) {
	repo := newFakeRepository()
	userID, course := seedCompletion(repo)
	repo.completed = 7
	svc := newCertService(t, repo)

	_, _, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := pkgerrors.As(err)
	if appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected progress details, got %T", appErr.Details())
	}
	if details["completed_lessons"] != int64(7) || details["total_lectures"] != int64(10) {
		t.Fatalf("unexpected details %+v", details)
	}
	if details["completion_percentage"] != 70.0 {
		t.Fatalf("unexpected percentage %v", details["completion_percentage"])
	}
}

func TestIssueZeroLessonCourse(t *testing.T) {
	repo := newFakeRepository()
	userID, course := seedCompletion(repo)
	repo.lessons = 0
	repo.completed = 0
	svc := newCertService(t, repo)

	_, _, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err == nil {
		t.Fatal("zero-lesson course must never issue")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueRequiresEnrollment(t *testing.T) {
	repo := newFakeRepository()
	userID, course := seedCompletion(repo)
	repo.enrolled[userID] = false
	svc := newCertService(t, repo)

	_, _, err := svc.Issue(context.Background(), userID, course.PublicID)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestVerifyStates(t *testing.T) {
	repo := newFakeRepository()
	svc := newCertService(t, repo)

	active := &models.Certificate{ID: uuid.New(), PublicID: "222222", Status: enums.CertificateStatusActive}
	revoked := &models.Certificate{ID: uuid.New(), PublicID: "333333", Status: enums.CertificateStatusRevoked}
	repo.certificates[active.PublicID] = active
	repo.certificates[revoked.PublicID] = revoked

	verification, err := svc.Verify(context.Background(), active.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verification.Verified || verification.Certificate == nil {
		t.Fatalf("active certificate should verify: %+v", verification)
	}

	verification, err = svc.Verify(context.Background(), revoked.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verification.Verified {
		t.Fatal("revoked certificate must not verify")
	}
	if verification.Status != "revoked" {
		t.Fatalf("expected status named, got %q", verification.Status)
	}

	_, err = svc.Verify(context.Background(), "444444")
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRevokeIsOneWay(t *testing.T) {
	repo := newFakeRepository()
	svc := newCertService(t, repo)

	certificate := &models.Certificate{ID: uuid.New(), PublicID: "222222", Status: enums.CertificateStatusActive}
	repo.certificates[certificate.PublicID] = certificate

	revoked, err := svc.Revoke(context.Background(), certificate.PublicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked.Status != enums.CertificateStatusRevoked {
		t.Fatalf("unexpected status %s", revoked.Status)
	}
	if repo.statusSet != "revoked" {
		t.Fatalf("status not persisted, got %q", repo.statusSet)
	}

	certificate.Status = enums.CertificateStatusRevoked
	_, err = svc.Revoke(context.Background(), certificate.PublicID)
	if err == nil {
		t.Fatal("revoking twice must conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetForUserOwnership(t *testing.T) {
	repo := newFakeRepository()
	svc := newCertService(t, repo)

	owner := uuid.New()
	certificate := &models.Certificate{ID: uuid.New(), PublicID: "222222", UserID: owner, Status: enums.CertificateStatusActive}
	repo.certificates[certificate.PublicID] = certificate

	if _, err := svc.GetForUser(context.Background(), certificate.PublicID, owner); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	_, err := svc.GetForUser(context.Background(), certificate.PublicID, uuid.New())
	if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
