package di

import (
	"fmt"

	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/handler"
	"github.com/Goh0809/Eventora-Backend/internal/identity"
	"github.com/Goh0809/Eventora-Backend/internal/publisher"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/Goh0809/Eventora-Backend/internal/worker"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/database"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	"github.com/Goh0809/Eventora-Backend/pkg/redis"
	"github.com/Goh0809/Eventora-Backend/pkg/saga"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Container holds all dependencies of the API
type Container struct {
	Config *config.Config
	Log    *logger.Logger
	Clock  clock.Clock

	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo       repository.EventRepository
	CategoryRepo    repository.CategoryRepository
	BookingRepo     repository.BookingRepository
	ParticipantRepo repository.ParticipantRepository
	ProfileRepo     repository.ProfileRepository

	// Collaborators
	Gateway        gateway.PaymentGateway
	Identity       *identity.Client
	TokenVerifier  middleware.TokenVerifier
	Storage        *storage.Client
	EventPublisher publisher.EventPublisher
	Orchestrator   *saga.Orchestrator

	// Services
	AuthService        service.AuthService
	ProfileService     service.ProfileService
	CategoryService    service.CategoryService
	EventService       service.EventService
	ParticipantService service.ParticipantService
	BookingService     service.BookingService
	DashboardService   service.DashboardService

	// Workers
	ExpiryWorker *worker.ExpiryWorker

	// Handlers
	Handlers *handler.Handlers
}

// ContainerConfig contains the infrastructure main has already connected
type ContainerConfig struct {
	Config *config.Config
	Log    *logger.Logger
	Clock  clock.Clock
	DB     *database.PostgresDB
	// Redis is nil when REDIS_ENABLED=false
	Redis *redis.Client
	// EventPublisher defaults to a no-op publisher
	EventPublisher publisher.EventPublisher
}

// NewContainer wires repositories, collaborators, services and handlers
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, fmt.Errorf("container config is required")
	}

	c := &Container{
		Config:         cfg.Config,
		Log:            cfg.Log,
		Clock:          cfg.Clock,
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}
	if c.Log == nil {
		c.Log = logger.Get()
	}
	if c.Clock == nil {
		c.Clock = clock.NewSystem()
	}
	if c.EventPublisher == nil {
		c.EventPublisher = publisher.NewNoOpEventPublisher()
	}

	c.initRepositories()

	if err := c.initCollaborators(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}

	c.ExpiryWorker = worker.NewExpiryWorker(c.BookingService, worker.ExpiryWorkerConfigFrom(c.Config.Expiry), c.Log)
	c.initHandlers()

	return c, nil
}

func (c *Container) initRepositories() {
	var pool *pgxpool.Pool
	if c.DB != nil {
		pool = c.DB.Pool()
	}

	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.BookingRepo = repository.NewPostgresBookingRepository(pool)
	c.ParticipantRepo = repository.NewPostgresParticipantRepository(pool)
	c.ProfileRepo = repository.NewPostgresProfileRepository(pool)

	categories := repository.NewPostgresCategoryRepository(pool)
	if c.Redis != nil {
		c.CategoryRepo = repository.NewCachedCategoryRepository(categories, c.Redis)
	} else {
		c.CategoryRepo = categories
	}
}

func (c *Container) initCollaborators() error {
	gw, err := gateway.New(c.Config.Stripe)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}
	c.Gateway = gw

	c.Identity = identity.NewClient(identity.ConfigFrom(c.Config.Supabase))
	c.TokenVerifier = identity.NewVerifier(c.Config.JWT.Secret, c.Identity)
	c.Storage = storage.NewClient(storage.ConfigFrom(c.Config.Supabase))

	// One orchestrator runs both the checkout and event creation sagas
	c.Orchestrator = saga.NewOrchestrator(&saga.OrchestratorConfig{
		Logger: saga.NewZapLogger(c.Log.Named("saga").Logger),
	})
	return nil
}

func (c *Container) initServices() error {
	var err error

	c.AuthService = service.NewAuthService(c.Identity, c.ProfileRepo, c.Clock, c.Log)
	c.ProfileService = service.NewProfileService(c.ProfileRepo, c.Storage, c.Config.Storage.AvatarBucket, c.Clock)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ParticipantService = service.NewParticipantService(c.ParticipantRepo)
	c.DashboardService = service.NewDashboardService(c.EventRepo, c.BookingRepo, c.Clock)

	c.EventService, err = service.NewEventService(
		c.EventRepo,
		c.CategoryRepo,
		c.BookingRepo,
		c.ProfileRepo,
		c.Gateway,
		c.Storage,
		c.Orchestrator,
		&service.EventServiceConfig{
			ImageBucket: c.Config.Storage.EventImageBucket,
			ImageFolder: c.Config.Storage.EventImageFolder,
			Clock:       c.Clock,
			Logger:      c.Log,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create event service: %w", err)
	}

	c.BookingService, err = service.NewBookingService(
		c.EventRepo,
		c.BookingRepo,
		c.ParticipantService,
		c.Gateway,
		c.Orchestrator,
		c.EventPublisher,
		&service.BookingServiceConfig{
			PendingTTL: c.Config.Expiry.PendingTTL,
			Clock:      c.Clock,
			Logger:     c.Log,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create booking service: %w", err)
	}
	return nil
}

func (c *Container) initHandlers() {
	components := map[string]handler.HealthChecker{"database": nil, "redis": nil}
	if c.DB != nil {
		components["database"] = c.DB
	}
	if c.Redis != nil {
		components["redis"] = c.Redis
	}

	c.Handlers = &handler.Handlers{
		Health:    handler.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, components),
		Auth:      handler.NewAuthHandler(c.AuthService),
		Profile:   handler.NewProfileHandler(c.ProfileService),
		Event:     handler.NewEventHandler(c.EventService),
		Category:  handler.NewCategoryHandler(c.CategoryService),
		Booking:   handler.NewBookingHandler(c.BookingService),
		Dashboard: handler.NewDashboardHandler(c.DashboardService),
	}
}

// RouteConfig returns the middleware the routes depend on. Checkout idempotency needs Redis.
func (c *Container) RouteConfig() handler.RouteConfig {
	rc := handler.RouteConfig{
		Prefix: c.Config.App.APIPrefix,
		Auth:   middleware.RequireAuth(c.TokenVerifier),
	}
	if c.Redis != nil {
		rc.Idempotency = middleware.Idempotency(middleware.DefaultIdempotencyConfig(c.Redis.Client()))
	}
	return rc
}

// Close releases the publisher. The database and Redis are owned by main.
func (c *Container) Close() {
	if err := c.EventPublisher.Close(); err != nil {
		c.Log.Warn("Failed to close event publisher", zap.Error(err))
	}
}
