package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/di"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/worker"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/migrations"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/config"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/database"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/middleware"
	pkgredis "github.com/rad-team-cpu/eventhand-v2-backend/pkg/redis"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "eventhand-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("starting eventhand service", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("tracing disabled, failed to initialize telemetry", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		version, err := database.Migrate(cfg.Database.DSN(), migrations.FS)
		if err != nil {
			appLog.Fatal("database migration failed", zap.Error(err))
		}
		appLog.Info("database migrated", zap.Uint("version", version))
	}

	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database, cfg.OTel.Enabled))
	if err != nil {
		appLog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("database connected")

	redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(&cfg.Redis))
	if err != nil {
		appLog.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))

	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("kafka connection failed, using no-op publisher", zap.Error(err))
		} else {
			eventPublisher = kafkaPublisher
			appLog.Info("kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}
	defer eventPublisher.Close()

	blockingStatuses, err := service.ParseBlockingStatuses(cfg.Matching.BlockingStatuses)
	if err != nil {
		appLog.Fatal("invalid blocking statuses", zap.Error(err))
	}

	var ratingCache repository.RatingCache = repository.NewRedisRatingCache(redisClient, cfg.Matching.RatingCacheTTL)

	container := di.NewContainer(&di.ContainerConfig{
		DB:               db,
		Redis:            redisClient,
		Repos:            di.NewPostgresRepositories(db, ratingCache),
		EventPublisher:   eventPublisher,
		BlockingStatuses: blockingStatuses,
		BookingConfig: &service.BookingServiceConfig{
			Topic:              cfg.Kafka.Topic,
			StepMaxRetries:     cfg.Booking.StepMaxRetries,
			StepInitialBackoff: cfg.Booking.StepInitialBackoff,
			DefaultPageSize:    cfg.Booking.DefaultPageSize,
			MaxPageSize:        cfg.Booking.MaxPageSize,
		},
		OutboxConfig: &worker.OutboxWorkerConfig{
			PollInterval:         cfg.Outbox.PollInterval,
			RetryInterval:        cfg.Outbox.RetryInterval,
			BatchSize:            cfg.Outbox.BatchSize,
			CleanupRetentionDays: cfg.Outbox.CleanupRetentionDays,
		},
		SweepConfig: &worker.SweepWorkerConfig{
			Interval: cfg.Booking.SweepInterval,
			LockTTL:  cfg.Booking.SweepLockTTL,
		},
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if err := container.OutboxWorker.Start(workerCtx); err != nil {
		appLog.Fatal("failed to start outbox worker", zap.Error(err))
	}
	if err := container.SweepWorker.Start(workerCtx); err != nil {
		appLog.Fatal("failed to start sweep worker", zap.Error(err))
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(middleware.Logger(appLog))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRoutes(router, container, cfg, redisClient)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("eventhand service listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server forced to shutdown", zap.Error(err))
	}

	stopWorkers()
	container.SweepWorker.Stop()
	container.OutboxWorker.Stop()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("telemetry shutdown failed", zap.Error(err))
	}

	appLog.Info("server exited gracefully")
}

const (
	roleClient = "client"
	roleVendor = "vendor"
)

func registerRoutes(router *gin.Engine, c *di.Container, cfg *config.Config, redisClient *pkgredis.Client) {
	auth := middleware.Auth(middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Store: redisClient.Client(),
	})
	clientOnly := middleware.RequireRole(roleClient)
	vendorOnly := middleware.RequireRole(roleVendor)

	v1 := router.Group("/api/v1")
	v1.Use(auth)

	events := v1.Group("/events")
	{
		events.POST("", clientOnly, idempotent, c.EventHandler.CreateEvent)
		events.GET("", clientOnly, c.EventHandler.ListEvents)
		events.GET("/:id", c.EventHandler.GetEvent)
		events.GET("/:id/matches", c.EventHandler.MatchEvent)
		events.GET("/:id/bookings", c.BookingHandler.ListEventBookings)
		events.PATCH("/:id/name", clientOnly, c.EventHandler.UpdateName)
		events.PATCH("/:id/date", clientOnly, c.EventHandler.UpdateDate)
		events.PATCH("/:id/address", clientOnly, c.EventHandler.UpdateAddress)
		events.PATCH("/:id/attendees", clientOnly, c.EventHandler.UpdateAttendees)
		events.PATCH("/:id/budget", clientOnly, c.EventHandler.UpdateBudget)
		events.DELETE("/:id", clientOnly, c.EventHandler.DeleteEvent)
	}

	bookings := v1.Group("/bookings")
	{
		bookings.POST("", clientOnly, idempotent, c.BookingHandler.CreateBooking)
		bookings.GET("/:id", c.BookingHandler.GetBooking)
		bookings.POST("/:id/confirm", vendorOnly, idempotent, c.BookingHandler.ConfirmBooking)
		bookings.POST("/:id/cancel", idempotent, c.BookingHandler.CancelBooking)
		bookings.POST("/:id/complete", idempotent, c.BookingHandler.CompleteBooking)
		bookings.DELETE("/:id", c.BookingHandler.RemoveBooking)
	}

	vendors := v1.Group("/vendors")
	{
		vendors.GET("/:id/bookings", vendorOnly, c.BookingHandler.ListVendorBookings)
		vendors.GET("/:id/packages", c.CatalogHandler.ListVendorPackages)
		vendors.GET("/:id/rating", c.CatalogHandler.GetVendorRating)
	}

	v1.POST("/reviews", clientOnly, idempotent, c.ReviewHandler.CreateReview)
	v1.DELETE("/reviews/:id", clientOnly, c.ReviewHandler.RemoveReview)

	v1.GET("/tags", c.CatalogHandler.ListTags)
	v1.POST("/tags", c.CatalogHandler.CreateTag)
	v1.POST("/packages", vendorOnly, c.CatalogHandler.CreatePackage)
	v1.PATCH("/packages/:id/price", vendorOnly, c.CatalogHandler.UpdatePackagePrice)
}
