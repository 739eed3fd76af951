package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger deletes acknowledged alerts older than a cutoff.
type Purger interface {
	DeleteAcknowledgedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Maintenance periodically purges acknowledged alerts past the retention
// window. Open alerts are never touched.
type Maintenance struct {
	purger    Purger
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMaintenance creates the retention loop.
func NewMaintenance(purger Purger, cfg Config, logger *zap.Logger) *Maintenance {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Maintenance{
		purger:    purger,
		retention: cfg.AlertRetention,
		interval:  cfg.MaintenanceInterval,
		logger:    logger,
	}
}

// Start launches the loop. A zero retention or interval disables it.
func (m *Maintenance) Start(ctx context.Context) {
	if m.retention <= 0 || m.interval <= 0 {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.RunOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop.
func (m *Maintenance) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// RunOnce executes a single purge.
func (m *Maintenance) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := m.purger.DeleteAcknowledgedBefore(ctx, time.Now().Add(-m.retention))
	if err != nil {
		m.logger.Warn("failed to purge acknowledged alerts", zap.Error(err))
		return
	}
	if n > 0 {
		m.logger.Info("purged acknowledged alerts", zap.Int64("count", n))
	}
}
