package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cycler runs one monitoring cycle.
type Cycler interface {
	RunCycle(ctx context.Context) CycleSummary
}

// Scheduler runs monitoring cycles on a fixed interval.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler for cycler.
func NewScheduler(cycler Cycler, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cycler: cycler, interval: interval, logger: logger}
}

// Start runs a cycle immediately and then on every tick until Stop is
// called or ctx is canceled. It does not block.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	loopCtx := s.ctx
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.cycler.RunCycle(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.cycler.RunCycle(loopCtx)
			}
		}
	}()
	s.logger.Info("monitor scheduler started", zap.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// running reports whether the scheduler loop is active.
func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx != nil && s.ctx.Err() == nil
}
