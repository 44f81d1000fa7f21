package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/metrics"
	"github.com/Goh0809/Eventora-Backend/internal/publisher"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/internal/worker"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/database"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "pending-expiry-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Pending Expiry Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}
	metrics.Init()

	dbCfg := database.ConfigFrom(cfg.Database, cfg.OTel.Enabled)
	dbCfg.MaxConns = 5
	dbCfg.MinConns = 1
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	var eventPublisher publisher.EventPublisher = publisher.NewNoOpEventPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := publisher.NewKafkaEventPublisher(ctx, &publisher.Config{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.BookingTopic,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID + "-expiry",
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		} else {
			eventPublisher = p
		}
	}
	defer eventPublisher.Close()

	// Expiry never calls the payment gateway
	gw := gateway.NewMockGateway(nil)

	bookingService, err := service.NewBookingService(
		repository.NewPostgresEventRepository(db.Pool()),
		repository.NewPostgresBookingRepository(db.Pool()),
		service.NewParticipantService(repository.NewPostgresParticipantRepository(db.Pool())),
		gw,
		nil,
		eventPublisher,
		&service.BookingServiceConfig{PendingTTL: cfg.Expiry.PendingTTL, Logger: appLog},
	)
	if err != nil {
		appLog.Fatal("Failed to create booking service", zap.Error(err))
	}

	w := worker.NewExpiryWorker(bookingService, worker.ExpiryWorkerConfigFrom(cfg.Expiry), appLog)
	if err := w.Start(ctx); err != nil {
		appLog.Fatal("Failed to start expiry worker", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down pending expiry worker...")

	w.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = telemetry.Shutdown(shutdownCtx)

	stats := w.GetStats()
	appLog.Info("Pending expiry worker stopped",
		zap.Int64("total_expired", stats.TotalExpired),
		zap.Int64("total_scans", stats.TotalScans),
	)
}
