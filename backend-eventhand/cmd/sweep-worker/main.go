// Command sweep-worker runs the booking sweep outside the API process.
// With -once it performs a single sweep and exits, which suits a cron job.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/di"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/worker"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/config"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/database"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	pkgredis "github.com/rad-team-cpu/eventhand-v2-backend/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "eventhand-sweep-worker",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database, false))
	if err != nil {
		appLog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(&cfg.Redis))
	if err != nil {
		appLog.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	repos := di.NewPostgresRepositories(db, nil)
	bookingService := service.NewBookingService(repos.Bookings, repos.Events, repos.Vendors, repos.Packages, repos.Events, &service.BookingServiceConfig{
		Topic:              cfg.Kafka.Topic,
		StepMaxRetries:     cfg.Booking.StepMaxRetries,
		StepInitialBackoff: cfg.Booking.StepInitialBackoff,
	})

	sweeper := worker.NewSweepWorker(bookingService, pkgredis.NewLocker(redisClient), &worker.SweepWorkerConfig{
		Interval: cfg.Booking.SweepInterval,
		LockTTL:  cfg.Booking.SweepLockTTL,
	})

	if *once {
		stats, err := sweeper.RunOnce(ctx)
		if err != nil {
			appLog.Error("sweep failed", zap.Error(err))
			os.Exit(1)
		}
		appLog.Info("sweep done",
			zap.Int64("cancelled", stats.Cancelled),
			zap.Int64("reconciled", stats.Reconciled),
			zap.Bool("skipped", stats.Skipped),
		)
		return
	}

	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal("failed to start sweep worker", zap.Error(err))
	}
	<-ctx.Done()
	sweeper.Stop()
	appLog.Info("sweep worker exited")
}
