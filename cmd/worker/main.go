package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hmsd/hospital-api/config"
	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/messaging/redis"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/email"
	"github.com/hmsd/hospital-api/internal/repository/postgres"
	notificationService "github.com/hmsd/hospital-api/internal/service/notification"
	reportService "github.com/hmsd/hospital-api/internal/service/report"
	"github.com/hmsd/hospital-api/internal/worker"
)

// WorkerEnv holds the worker-only tunables, read from the environment on
// top of the shared config file.
type WorkerEnv struct {
	HealthPort    int           `envconfig:"WORKER_HEALTH_PORT" default:"8081"`
	PollTimeout   time.Duration `envconfig:"WORKER_POLL_TIMEOUT" default:"5s"`
	RetryAttempts int           `envconfig:"WORKER_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"WORKER_RETRY_DELAY" default:"5s"`
}

func setupHealthCheck(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env WorkerEnv
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
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

	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	treatmentRepo := postgres.NewTreatmentRepository(baseRepo)

	workerMetrics := metrics.New("hospital_worker")
	mailSender := email.NewSMTPSender(cfg.SMTP)

	reportSvc := reportService.NewService(broker, cfg.Redis.ReportQueue, cfg.Reports.Dir, treatmentRepo, appointmentRepo, appLogger)
	notificationSvc := notificationService.NewService(userRepo, appointmentRepo, mailSender, workerMetrics, appLogger)

	consumer := worker.NewConsumer(broker, reportSvc, worker.ConsumerConfig{
		Queue:         cfg.Redis.ReportQueue,
		EventChannel:  cfg.Redis.EventChannel,
		PollTimeout:   env.PollTimeout,
		RetryAttempts: env.RetryAttempts,
		RetryDelay:    env.RetryDelay,
	}, appLogger, workerMetrics)
	scheduler := worker.NewScheduler(notificationSvc, appLogger, workerMetrics)

	setupHealthCheck(env.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	go scheduler.Start(ctx)
	consumer.Start(ctx)
}
