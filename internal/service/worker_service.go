package service

import (
	"context"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/logger"

	"go.uber.org/zap"
)

// Sweeper is implemented by StockService
type Sweeper interface {
	SweepExpiring(ctx context.Context) (int, error)
}

// WorkerService periodically flags stock that entered the expiry window without a write
type WorkerService struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

func NewWorkerService(sweeper Sweeper, interval time.Duration, log *zap.Logger) *WorkerService {
	return &WorkerService{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.OrNop(log),
	}
}

// Enabled reports whether a positive interval was configured
func (w *WorkerService) Enabled() bool {
	return w.interval > 0
}

// Start runs the sweep loop until ctx is cancelled. It returns immediately when disabled.
func (w *WorkerService) Start(ctx context.Context) {
	if !w.Enabled() {
		w.logger.Info("expiry sweeper disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("expiry sweeper started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *WorkerService) sweepOnce(ctx context.Context) {
	changed, err := w.sweeper.SweepExpiring(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("expiry sweep failed", zap.Int("changed", changed), zap.Error(err))
		}
		return
	}
	if changed > 0 {
		w.logger.Info("expiry sweep flagged records", zap.Int("changed", changed))
	}
}
