package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	_ "github.com/lib/pq"

	"github.com/hmsd/hospital-api/config"
	jwtauth "github.com/hmsd/hospital-api/pkg/auth"
	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/messaging"
	"github.com/hmsd/hospital-api/pkg/messaging/redis"
	"github.com/hmsd/hospital-api/pkg/metrics"
	"github.com/hmsd/hospital-api/pkg/security"

	"github.com/hmsd/hospital-api/internal/email"
	adminHandler "github.com/hmsd/hospital-api/internal/handler/admin"
	appointmentHandler "github.com/hmsd/hospital-api/internal/handler/appointment"
	authHandler "github.com/hmsd/hospital-api/internal/handler/auth"
	departmentHandler "github.com/hmsd/hospital-api/internal/handler/department"
	doctorHandler "github.com/hmsd/hospital-api/internal/handler/doctor"
	healthHandler "github.com/hmsd/hospital-api/internal/handler/health"
	patientHandler "github.com/hmsd/hospital-api/internal/handler/patient"
	reportHandler "github.com/hmsd/hospital-api/internal/handler/report"
	"github.com/hmsd/hospital-api/internal/middleware"
	"github.com/hmsd/hospital-api/internal/repository/postgres"
	"github.com/hmsd/hospital-api/internal/router"
	appointmentService "github.com/hmsd/hospital-api/internal/service/appointment"
	authService "github.com/hmsd/hospital-api/internal/service/auth"
	availabilityService "github.com/hmsd/hospital-api/internal/service/availability"
	departmentService "github.com/hmsd/hospital-api/internal/service/department"
	doctorService "github.com/hmsd/hospital-api/internal/service/doctor"
	notificationService "github.com/hmsd/hospital-api/internal/service/notification"
	patientService "github.com/hmsd/hospital-api/internal/service/patient"
	reportService "github.com/hmsd/hospital-api/internal/service/report"
	treatmentService "github.com/hmsd/hospital-api/internal/service/treatment"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Export job outcomes come back over the event channel; log them here so
	// an operator can follow a task_id from the 202 to its file.
	eventCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	go func() {
		events, err := broker.Subscribe(eventCtx, cfg.Redis.EventChannel)
		if err != nil {
			appLogger.Error(err, "Failed to subscribe to export events")
			return
		}
		for payload := range events {
			var msg messaging.Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				appLogger.Warn("Discarding malformed export event", "error", err.Error())
				continue
			}
			appLogger.Info("Export job event", "type", msg.Type)
		}
	}()

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	doctorRepo := postgres.NewDoctorProfileRepository(baseRepo)
	patientRepo := postgres.NewPatientProfileRepository(baseRepo)
	departmentRepo := postgres.NewDepartmentRepository(baseRepo)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	treatmentRepo := postgres.NewTreatmentRepository(baseRepo)

	// Shared infrastructure
	appMetrics := metrics.New("hospital_api")
	hasher := security.NewBcryptHasher(0)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	mailSender := email.NewSMTPSender(cfg.SMTP)

	// Services
	authSvc := authService.NewService(userRepo, doctorRepo, patientRepo, jwtSvc, hasher, appLogger)
	notificationSvc := notificationService.NewService(userRepo, appointmentRepo, mailSender, appMetrics, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, userRepo, notificationSvc, appLogger)
	availabilitySvc := availabilityService.NewService(doctorRepo, appointmentRepo)
	doctorSvc := doctorService.NewService(userRepo, doctorRepo, departmentRepo, hasher)
	patientSvc := patientService.NewService(userRepo, patientRepo)
	departmentSvc := departmentService.NewService(departmentRepo, doctorRepo)
	treatmentSvc := treatmentService.NewService(treatmentRepo)
	reportSvc := reportService.NewService(broker, cfg.Redis.ReportQueue, cfg.Reports.Dir, treatmentRepo, appointmentRepo, appLogger)

	if err := authSvc.SeedAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	authH := authHandler.NewHandler(authSvc)
	adminH := adminHandler.NewHandler(doctorSvc, patientSvc, appointmentSvc, departmentSvc, reportSvc)
	doctorH := doctorHandler.NewHandler(doctorSvc, appointmentSvc)
	patientH := patientHandler.NewHandler(patientSvc, appointmentSvc, treatmentSvc, departmentSvc, reportSvc)
	appointmentH := appointmentHandler.NewHandler(availabilitySvc, appointmentSvc)
	departmentH := departmentHandler.NewHandler(departmentSvc)
	reportH := reportHandler.NewHandler(reportSvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authH,
		adminH,
		doctorH,
		patientH,
		appointmentH,
		departmentH,
		reportH,
		healthH,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORS:             corsConfig(cfg),
			Metrics:          appMetrics,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	return corsCfg
}
