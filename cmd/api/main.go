package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/knowledgeledger/lms-backend/api/routes"
	"github.com/knowledgeledger/lms-backend/internal/cart"
	"github.com/knowledgeledger/lms-backend/internal/catalog"
	"github.com/knowledgeledger/lms-backend/internal/certificates"
	"github.com/knowledgeledger/lms-backend/internal/credentials"
	"github.com/knowledgeledger/lms-backend/internal/enrollments"
	"github.com/knowledgeledger/lms-backend/internal/instructor"
	"github.com/knowledgeledger/lms-backend/internal/notifications"
	"github.com/knowledgeledger/lms-backend/internal/orders"
	"github.com/knowledgeledger/lms-backend/internal/payments"
	"github.com/knowledgeledger/lms-backend/internal/pricing"
	"github.com/knowledgeledger/lms-backend/internal/quiz"
	"github.com/knowledgeledger/lms-backend/internal/reviews"
	"github.com/knowledgeledger/lms-backend/pkg/config"
	"github.com/knowledgeledger/lms-backend/pkg/db"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
	"github.com/knowledgeledger/lms-backend/pkg/metrics"
	"github.com/knowledgeledger/lms-backend/pkg/migrate"
	"github.com/knowledgeledger/lms-backend/pkg/razorpay"
	"github.com/knowledgeledger/lms-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	pricingSvc, err := pricing.NewService(pricing.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	cartRepo := cart.NewRepository(gormDB)
	cartSvc, err := cart.NewService(cartRepo, pricingSvc, cfg.Tax.DefaultCountry)
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(gormDB), dbClient, cartRepo, pricingSvc)
	if err != nil {
		return routes.Services{}, err
	}

	gatewayClient, err := razorpay.NewClient(cfg.Razorpay, logg)
	if err != nil {
		return routes.Services{}, err
	}
	paymentsSvc, err := payments.NewService(payments.NewRepository(gormDB), dbClient, gatewayClient)
	if err != nil {
		return routes.Services{}, err
	}

	quizSvc, err := quiz.NewService(quiz.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	certificatesSvc, err := certificates.NewService(certificates.NewRepository(gormDB), dbClient, cfg.Frontend.SiteURL)
	if err != nil {
		return routes.Services{}, err
	}

	enrollmentsSvc, err := enrollments.NewService(enrollments.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	reviewsSvc, err := reviews.NewService(reviews.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	instructorSvc, err := instructor.NewService(instructor.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	credentialsSvc, err := credentials.NewService(credentials.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsSvc, err := notifications.NewService(
		notifications.NewRepository(gormDB),
		notifications.NewSendgridMailer(cfg.Sendgrid),
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:       catalogSvc,
		Cart:          cartSvc,
		Orders:        ordersSvc,
		Payments:      paymentsSvc,
		Quiz:          quizSvc,
		Certificates:  certificatesSvc,
		Enrollments:   enrollmentsSvc,
		Reviews:       reviewsSvc,
		Instructor:    instructorSvc,
		Credentials:   credentialsSvc,
		Notifications: notificationsSvc,
	}, nil
}
