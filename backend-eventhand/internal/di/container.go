package di

import (
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/handler"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/service"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/worker"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/database"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/redis"
)

// Container holds all dependencies for the eventhand service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	Repos *Repositories

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	RatingService   service.RatingService
	MatchService    service.MatchService
	EventService    service.EventService
	BookingService  service.BookingService
	ReviewService   service.ReviewService
	CatalogService  service.CatalogService
	FollowUpHandler service.FollowUpHandler

	// Workers
	OutboxWorker *worker.OutboxWorker
	SweepWorker  *worker.SweepWorker

	// Handlers
	HealthHandler  *handler.HealthHandler
	EventHandler   *handler.EventHandler
	BookingHandler *handler.BookingHandler
	ReviewHandler  *handler.ReviewHandler
	CatalogHandler *handler.CatalogHandler
}

// Repositories groups the store access layer
type Repositories struct {
	Events   repository.EventRepository
	Vendors  repository.VendorRepository
	Packages repository.PackageRepository
	Bookings repository.BookingRepository
	Reviews  repository.ReviewRepository
	Tags     repository.TagRepository
	Outbox   repository.OutboxRepository
	// RatingCache may be nil
	RatingCache repository.RatingCache
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB               *database.PostgresDB
	Redis            *redis.Client
	Repos            *Repositories
	EventPublisher   service.EventPublisher
	BlockingStatuses []domain.BookingStatus
	BookingConfig    *service.BookingServiceConfig
	OutboxConfig     *worker.OutboxWorkerConfig
	SweepConfig      *worker.SweepWorkerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		Repos:          cfg.Repos,
		EventPublisher: cfg.EventPublisher,
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}
	r := c.Repos

	// Initialize services
	c.RatingService = service.NewRatingService(r.Reviews, r.Vendors, r.RatingCache)
	availability := service.NewAvailabilityResolver(r.Vendors, r.Bookings, cfg.BlockingStatuses)
	c.MatchService = service.NewMatchService(r.Events, r.Packages, availability, c.RatingService)
	c.EventService = service.NewEventService(r.Events)
	c.BookingService = service.NewBookingService(r.Bookings, r.Events, r.Vendors, r.Packages, r.Events, cfg.BookingConfig)
	c.ReviewService = service.NewReviewService(r.Reviews, r.Bookings, c.BookingService, c.RatingService)
	c.CatalogService = service.NewCatalogService(r.Tags, r.Packages)
	c.FollowUpHandler = service.NewBookingFollowUpHandler(r.Bookings, r.Events)

	// Initialize workers
	c.OutboxWorker = worker.NewOutboxWorker(r.Outbox, c.FollowUpHandler, c.EventPublisher, cfg.OutboxConfig)
	if c.Redis != nil {
		c.SweepWorker = worker.NewSweepWorker(c.BookingService, redis.NewLocker(c.Redis), cfg.SweepConfig)
	}

	// Initialize handlers
	var dbCheck, redisCheck handler.HealthChecker
	if c.DB != nil {
		dbCheck = c.DB
	}
	if c.Redis != nil {
		redisCheck = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(dbCheck, redisCheck)
	c.EventHandler = handler.NewEventHandler(c.EventService, c.MatchService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.ReviewHandler = handler.NewReviewHandler(c.ReviewService)
	c.CatalogHandler = handler.NewCatalogHandler(c.CatalogService, c.RatingService)

	return c
}

// NewPostgresRepositories builds every repository on one pool. cache may be nil.
func NewPostgresRepositories(db *database.PostgresDB, cache repository.RatingCache) *Repositories {
	pool := db.Pool()
	return &Repositories{
		Events:      repository.NewPostgresEventRepository(pool),
		Vendors:     repository.NewPostgresVendorRepository(pool),
		Packages:    repository.NewPostgresPackageRepository(pool),
		Bookings:    repository.NewPostgresBookingRepository(pool),
		Reviews:     repository.NewPostgresReviewRepository(pool),
		Tags:        repository.NewPostgresTagRepository(pool),
		Outbox:      repository.NewPostgresOutboxRepository(pool),
		RatingCache: cache,
	}
}
