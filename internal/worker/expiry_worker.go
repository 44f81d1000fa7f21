package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/metrics"
	"github.com/Goh0809/Eventora-Backend/pkg/config"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"go.uber.org/zap"
)

// PendingExpirer expires one batch of stale pending bookings. Satisfied by service.BookingService.
type PendingExpirer interface {
	ExpireStalePending(ctx context.Context, limit int) (int, error)
}

// ExpiryWorkerConfig contains configuration for the expiry worker
type ExpiryWorkerConfig struct {
	// ScanInterval is the interval between scans
	ScanInterval time.Duration
	// BatchSize is the number of bookings expired per scan
	BatchSize int
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: time.Minute,
		BatchSize:    100,
	}
}

// ExpiryWorkerConfigFrom maps application settings onto a worker configuration
func ExpiryWorkerConfigFrom(e config.ExpiryConfig) *ExpiryWorkerConfig {
	cfg := DefaultExpiryWorkerConfig()
	if e.ScanInterval > 0 {
		cfg.ScanInterval = e.ScanInterval
	}
	if e.BatchSize > 0 {
		cfg.BatchSize = e.BatchSize
	}
	return cfg
}

// ExpiryWorker periodically marks abandoned pending bookings as expired
type ExpiryWorker struct {
	expirer PendingExpirer
	config  *ExpiryWorkerConfig
	log     *logger.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	// Stats
	totalExpired     int64
	totalScans       int64
	failedScans      int64
	lastScanTime     time.Time
	lastExpiredCount int
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(expirer PendingExpirer, cfg *ExpiryWorkerConfig, log *logger.Logger) *ExpiryWorker {
	if cfg == nil {
		cfg = DefaultExpiryWorkerConfig()
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultExpiryWorkerConfig().ScanInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultExpiryWorkerConfig().BatchSize
	}
	if log == nil {
		log = logger.Get()
	}

	return &ExpiryWorker{
		expirer: expirer,
		config:  cfg,
		log:     log.Named("expiry-worker"),
	}
}

// Start launches the scan loop. The first scan runs immediately. A stopped worker can be started again.
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	w.log.Info("Starting expiry worker",
		zap.Duration("scan_interval", w.config.ScanInterval),
		zap.Int("batch_size", w.config.BatchSize),
	)

	w.wg.Add(1)
	go w.loop(ctx, stopCh)

	return nil
}

// Stop stops the scan loop and waits for an in-flight scan to finish
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Stopping expiry worker")
	close(stopCh)
	w.wg.Wait()
	w.log.Info("Expiry worker stopped")
}

func (w *ExpiryWorker) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	w.Scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.Scan(ctx)
		}
	}
}

// Scan expires one batch and returns how many bookings changed
func (w *ExpiryWorker) Scan(ctx context.Context) int {
	start := time.Now()

	expired, err := w.expirer.ExpireStalePending(ctx, w.config.BatchSize)

	w.mu.Lock()
	w.totalScans++
	w.lastScanTime = start
	if err != nil {
		w.failedScans++
	} else {
		w.totalExpired += int64(expired)
		w.lastExpiredCount = expired
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Error("Failed to expire pending bookings", zap.Error(err))
		return 0
	}

	metrics.RecordExpiryScan(ctx, time.Since(start).Seconds(), expired)
	if expired > 0 {
		w.log.Info("Expired pending bookings", zap.Int("count", expired))
	}
	return expired
}

// GetStats returns worker statistics
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		TotalScans:       w.totalScans,
		FailedScans:      w.failedScans,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ExpiryWorkerStats contains worker statistics
type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	TotalScans       int64     `json:"total_scans"`
	FailedScans      int64     `json:"failed_scans"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}
