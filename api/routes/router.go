package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/knowledgeledger/lms-backend/api/controllers"
	"github.com/knowledgeledger/lms-backend/api/middleware"
	"github.com/knowledgeledger/lms-backend/internal/cart"
	"github.com/knowledgeledger/lms-backend/internal/catalog"
	"github.com/knowledgeledger/lms-backend/internal/certificates"
	"github.com/knowledgeledger/lms-backend/internal/credentials"
	"github.com/knowledgeledger/lms-backend/internal/enrollments"
	"github.com/knowledgeledger/lms-backend/internal/instructor"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/internal/orders"
	"github.com/knowledgeledger/lms-backend/internal/payments"
	"github.com/knowledgeledger/lms-backend/internal/quiz"
	"github.com/knowledgeledger/lms-backend/internal/reviews"
	"github.com/knowledgeledger/lms-backend/pkg/config"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
	"github.com/knowledgeledger/lms-backend/pkg/metrics"
	"github.com/knowledgeledger/lms-backend/pkg/redis"
)

// Services groups the domain services the router wires to handlers.
type Services struct {
	Catalog       catalog.Service
	Cart          cart.Service
	Orders        orders.Service
	Payments      payments.Service
	Quiz          quiz.Service
	Certificates  certificates.Service
	Enrollments   enrollments.Service
	Reviews       reviews.Service
	Instructor    instructor.Service
	Credentials   credentials.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.Frontend),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		// Catalog reads, no auth required.
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		r.Route("/courses", func(r chi.Router) {
			r.Get("/", controllers.CourseList(svcs.Catalog, logg))
			r.Get("/{course}", controllers.CourseDetail(svcs.Catalog, logg))
			r.Get("/{course}/reviews", controllers.CourseReviews(svcs.Reviews, logg))
			r.Get("/{course}/quiz", controllers.QuizByCourse(svcs.Quiz, logg))
		})

		// Anonymous cart session.
		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartUpsert(svcs.Cart, logg))
			r.Get("/{cartId}", controllers.CartList(svcs.Cart, logg))
			r.Get("/{cartId}/stats", controllers.CartStats(svcs.Cart, logg))
			r.Delete("/{cartId}/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
			r.Post("/coupon", controllers.OrderApplyCoupon(svcs.Orders, logg))
			r.Get("/{oid}", controllers.OrderCheckout(svcs.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/gateway-order/{oid}", controllers.PaymentGatewayOrder(svcs.Payments, logg))
			r.Post("/confirm", controllers.PaymentConfirm(svcs.Payments, svcs.Notifications, logg))
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", controllers.QuizCreate(svcs.Quiz, logg))
			r.Route("/{quiz}", func(r chi.Router) {
				r.Get("/", controllers.QuizDetail(svcs.Quiz, logg))
				r.Put("/", controllers.QuizUpdate(svcs.Quiz, logg))
				r.Delete("/", controllers.QuizDelete(svcs.Quiz, logg))
				r.Get("/take", controllers.QuizTake(svcs.Quiz, logg))
				r.Get("/analytics", controllers.QuizAnalytics(svcs.Quiz, logg))
				r.Get("/student-status", controllers.QuizStudentStatus(svcs.Quiz, logg))
				r.Route("/questions", func(r chi.Router) {
					r.Get("/", controllers.QuestionList(svcs.Quiz, logg))
					r.Post("/", controllers.QuestionCreate(svcs.Quiz, logg))
					r.Put("/{question}", controllers.QuestionUpdate(svcs.Quiz, logg))
					r.Delete("/{question}", controllers.QuestionDelete(svcs.Quiz, logg))
				})
				r.Route("/attempts", func(r chi.Router) {
					r.Get("/", controllers.AttemptList(svcs.Quiz, logg))
					r.Post("/", controllers.AttemptSubmit(svcs.Quiz, logg))
					r.Get("/best", controllers.AttemptBest(svcs.Quiz, logg))
				})
			})
		})
		r.Get("/attempts/{attempt}", controllers.AttemptResult(svcs.Quiz, logg))

		r.Route("/certificates", func(r chi.Router) {
			r.Post("/", controllers.CertificateIssue(svcs.Certificates, svcs.Notifications, logg))
			r.Get("/", controllers.CertificateList(svcs.Certificates, logg))
			r.Get("/{certificateId}", controllers.CertificateDetail(svcs.Certificates, logg))
		})
		// Public verification link printed on certificates.
		r.Get("/verify-certificate/{certificateId}", controllers.CertificateVerify(svcs.Certificates, logg))

		r.Route("/student", func(r chi.Router) {
			// Dev keeps the payload-id fallback; production insists on
			// a bearer token.
			if cfg.App.IsProd() {
				r.Use(middleware.RequireUser(logg))
			}
			r.Get("/summary", controllers.StudentSummary(svcs.Enrollments, logg))
			r.Get("/courses", controllers.StudentCourses(svcs.Enrollments, logg))
			r.Get("/courses/{enrollmentId}", controllers.StudentCourseDetail(svcs.Enrollments, logg))
			r.Post("/lesson-complete", controllers.StudentToggleLesson(svcs.Enrollments, logg))
			r.Route("/notes", func(r chi.Router) {
				r.Post("/", controllers.NoteCreate(svcs.Enrollments, logg))
				r.Get("/{course}", controllers.NoteList(svcs.Enrollments, logg))
				r.Put("/{noteId}", controllers.NoteUpdate(svcs.Enrollments, logg))
				r.Delete("/{noteId}", controllers.NoteDelete(svcs.Enrollments, logg))
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(svcs.Enrollments, logg))
				r.Post("/", controllers.WishlistToggle(svcs.Enrollments, logg))
			})
			r.Route("/reviews", func(r chi.Router) {
				r.Post("/", controllers.ReviewCreate(svcs.Reviews, svcs.Notifications, logg))
				r.Put("/{reviewId}", controllers.ReviewUpdate(svcs.Reviews, logg))
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.StudentNotifications(svcs.Notifications, logg))
				r.Post("/{notificationId}/seen", controllers.StudentNotificationSeen(svcs.Notifications, logg))
				r.Post("/seen-all", controllers.StudentNotificationsSeenAll(svcs.Notifications, logg))
			})
		})

		r.Route("/instructor", func(r chi.Router) {
			if cfg.App.IsProd() {
				r.Use(middleware.RequireInstructor(logg))
			}
			r.Get("/summary", controllers.InstructorSummary(svcs.Instructor, logg))
			r.Get("/earnings", controllers.InstructorEarnings(svcs.Instructor, logg))
			r.Get("/best-selling", controllers.InstructorBestSelling(svcs.Instructor, logg))
			r.Get("/orders", controllers.InstructorOrders(svcs.Instructor, logg))
			r.Get("/students", controllers.InstructorStudents(svcs.Instructor, logg))
			r.Get("/reviews", controllers.InstructorReviews(svcs.Reviews, logg))
			r.Post("/reviews/{reviewId}/reply", controllers.ReviewReply(svcs.Reviews, svcs.Notifications, logg))
			r.Route("/courses", func(r chi.Router) {
				r.Get("/", controllers.InstructorCourses(svcs.Instructor, logg))
				r.Post("/", controllers.CourseCreate(svcs.Catalog, logg))
				r.Route("/{course}", func(r chi.Router) {
					r.Put("/", controllers.CourseUpdate(svcs.Catalog, logg))
					r.Post("/sections", controllers.SectionCreate(svcs.Catalog, logg))
					r.Put("/sections/{section}", controllers.SectionUpdate(svcs.Catalog, logg))
					r.Delete("/sections/{section}", controllers.SectionDelete(svcs.Catalog, logg))
					r.Post("/sections/{section}/lessons", controllers.LessonCreate(svcs.Catalog, logg))
					r.Put("/lessons/{lesson}", controllers.LessonUpdate(svcs.Catalog, logg))
					r.Delete("/lessons/{lesson}", controllers.LessonDelete(svcs.Catalog, logg))
				})
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.CouponList(svcs.Instructor, logg))
				r.Post("/", controllers.CouponCreate(svcs.Instructor, logg))
				r.Put("/{couponId}", controllers.CouponUpdate(svcs.Instructor, logg))
				r.Delete("/{couponId}", controllers.CouponDelete(svcs.Instructor, logg))
			})
			r.Post("/certificates/{certificateId}/revoke", controllers.CertificateRevoke(svcs.Certificates, logg))
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.InstructorNotifications(svcs.Notifications, logg))
				r.Post("/{notificationId}/seen", controllers.InstructorNotificationSeen(svcs.Notifications, logg))
				r.Post("/seen-all", controllers.InstructorNotificationsSeenAll(svcs.Notifications, logg))
			})
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Post("/enrollment", controllers.TokenMintEnrollment(svcs.Credentials, svcs.Notifications, logg))
			r.Get("/enrollment/{enrollmentId}", controllers.TokenForEnrollment(svcs.Credentials, logg))
			r.Post("/certificate", controllers.TokenMintCertificate(svcs.Credentials, svcs.Notifications, logg))
			r.Get("/certificate/{certificateId}", controllers.TokenForCertificate(svcs.Credentials, logg))
		})
	})

	return r
}
