package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/di"
	"github.com/Goh0809/Eventora-Backend/internal/handler"
	"github.com/Goh0809/Eventora-Backend/internal/metrics"
	"github.com/Goh0809/Eventora-Backend/internal/publisher"
	"github.com/Goh0809/Eventora-Backend/migrations"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/database"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	pkgredis "github.com/Goh0809/Eventora-Backend/pkg/redis"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "eventora-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       logLevel(cfg),
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Eventora API...", zap.String("version", cfg.App.Version), zap.String("env", cfg.App.Environment))

	ctx := context.Background()

	// Tracing and metrics
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}
	metrics.Init()

	// Database
	db, err := database.NewPostgres(ctx, database.ConfigFrom(cfg.Database, cfg.OTel.Enabled))
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected", zap.String("host", cfg.Database.Host))

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.Pool(), appLog.Named("migrations").Logger); err != nil {
			appLog.Fatal("Migration failed", zap.Error(err))
		}
	}

	// Redis backs the category cache and checkout idempotency
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, pkgredis.ConfigFrom(cfg.Redis))
		if err != nil {
			appLog.Warn("Redis unavailable, running without cache and idempotency", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected")
		}
	}

	eventPublisher := newEventPublisher(ctx, cfg, appLog)

	container, err := di.NewContainer(&di.ContainerConfig{
		Config:         cfg,
		Log:            appLog,
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
	})
	if err != nil {
		appLog.Fatal("Failed to build container", zap.Error(err))
	}
	defer container.Close()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.Expiry.Enabled {
		if err := container.ExpiryWorker.Start(workerCtx); err != nil {
			appLog.Error("Failed to start expiry worker", zap.Error(err))
		}
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, container, appLog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("Eventora API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	container.ExpiryWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

func newRouter(cfg *config.Config, container *di.Container, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware(serviceName))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.App.CORSOrigins)))

	handler.RegisterRoutes(router, container.Handlers, container.RouteConfig())
	return router
}

// newEventPublisher falls back to a no-op publisher when Kafka is not configured or unreachable
func newEventPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) publisher.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("Kafka not configured, booking events are not published")
		return publisher.NewNoOpEventPublisher()
	}

	p, err := publisher.NewKafkaEventPublisher(ctx, &publisher.Config{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.BookingTopic,
		ServiceName: serviceName,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		log.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		return publisher.NewNoOpEventPublisher()
	}
	log.Info("Kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
	return p
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
