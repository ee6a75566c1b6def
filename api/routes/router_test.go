package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/knowledgeledger/lms-backend/internal/cart"
	"github.com/knowledgeledger/lms-backend/internal/catalog"
	"github.com/knowledgeledger/lms-backend/internal/certificates"
	"github.com/knowledgeledger/lms-backend/internal/enrollments"
	"github.com/knowledgeledger/lms-backend/internal/instructor"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	pkgAuth "github.com/knowledgeledger/lms-backend/pkg/auth"
	"github.com/knowledgeledger/lms-backend/pkg/config"
	"github.com/knowledgeledger/lms-backend/pkg/db/models"
	"github.com/knowledgeledger/lms-backend/pkg/enums"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCatalogService struct {
	catalog.Service
}

func (stubCatalogService) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{Title: "Development", Slug: "development"}}, nil
}

type stubCartService struct {
	cart.Service
}

func (stubCartService) Stats(context.Context, string) (*cart.Stats, error) {
	return &cart.Stats{Count: 2}, nil
}

type stubCertificatesService struct {
	certificates.Service
}

func (stubCertificatesService) Verify(context.Context, string) (*certificates.Verification, error) {
	return &certificates.Verification{Verified: true, Status: "active"}, nil
}

type stubEnrollmentsService struct {
	enrollments.Service
}

func (stubEnrollmentsService) Summary(context.Context, uuid.UUID) (*enrollments.LearnerSummary, error) {
	return &enrollments.LearnerSummary{TotalCourses: 3}, nil
}

type stubNotificationsService struct {
	notifications.Service
}

type stubInstructorService struct {
	instructor.Service
}

func (stubInstructorService) Summary(context.Context, uuid.UUID) (*instructor.Summary, error) {
	return &instructor.Summary{TotalCourses: 2}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterEnv(t, "test")
}

func newTestRouterEnv(t *testing.T, env string) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = env
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	logg := logger.New(logger.Options{ServiceName: "test"})

	return NewRouter(cfg, logg, stubPinger{}, nil, nil, Services{
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Certificates:  stubCertificatesService{},
		Enrollments:   stubEnrollmentsService{},
		Instructor:    stubInstructorService{},
		Notifications: stubNotificationsService{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "live") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestRouterHealthReady(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterPublicCatalog(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var payload struct {
		Data []models.Category `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Slug != "development" {
		t.Fatalf("unexpected categories: %+v", payload.Data)
	}
}

func TestRouterCartStatsParam(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/sess-1/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterCertificateVerifyPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify-certificate/123456", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterStudentSummaryRequiresIdentity(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/summary", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterStudentSummaryWithBearer(t *testing.T) {
	router := newTestRouter(t)

	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleStudent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterProdStudentGateIgnoresQueryIdentity(t *testing.T) {
	router := newTestRouterEnv(t, config.AppEnvProd)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/summary?user_id="+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterProdStudentGateAcceptsBearer(t *testing.T) {
	router := newTestRouterEnv(t, config.AppEnvProd)

	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleStudent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterProdInstructorGate(t *testing.T) {
	router := newTestRouterEnv(t, config.AppEnvProd)
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

	studentToken, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleStudent,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/instructor/summary", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student token got %d", resp.Code)
	}

	instructorID := uuid.New()
	instructorToken, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:       uuid.New(),
		InstructorID: &instructorID,
		Role:         enums.ActorRoleInstructor,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/instructor/summary", nil)
	req.Header.Set("Authorization", "Bearer "+instructorToken)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for instructor token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/does-not-exist", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
