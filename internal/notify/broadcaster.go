package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config controls the relay.
type Config struct {
	QueueSize     int           `mapstructure:"queue_size"`
	DrainInterval time.Duration `mapstructure:"drain_interval"`
}

// DefaultConfig returns the reference relay settings.
func DefaultConfig() Config {
	return Config{QueueSize: 10, DrainInterval: 5 * time.Second}
}

// Sink receives drained events, typically the websocket hub.
type Sink interface {
	Send(e Event)
}

// Broadcaster periodically drains a Queue into a Sink.
type Broadcaster struct {
	queue    *Queue
	sink     Sink
	interval time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	lastDropped uint64
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster(queue *Queue, sink Sink, interval time.Duration, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{queue: queue, sink: sink, interval: interval, logger: logger}
}

// Start runs the drain loop until Stop is called or ctx is canceled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.mu.Lock()
	b.ctx, b.cancel = context.WithCancel(ctx)
	loopCtx := b.ctx
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				b.Flush()
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. Pending events are flushed
// once more before returning.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
	b.Flush()
}

// Flush drains the queue immediately and returns how many events were sent.
// A panicking sink loses the rest of the batch but never the loop.
func (b *Broadcaster) Flush() (sent int) {
	events := b.queue.Drain()
	b.reportDropped()
	defer func() {
		eventsBroadcastTotal.Add(float64(sent))
		if r := recover(); r != nil {
			b.logger.Error("notification sink panicked",
				zap.Any("panic", r),
				zap.Int("lost", len(events)-sent),
			)
		}
	}()
	for _, e := range events {
		b.sink.Send(e)
		sent++
	}
	if sent > 0 {
		b.logger.Debug("notifications broadcast", zap.Int("count", sent))
	}
	return sent
}

// reportDropped logs events the queue discarded since the previous flush.
func (b *Broadcaster) reportDropped() {
	total := b.queue.Dropped()
	b.mu.Lock()
	delta := total - b.lastDropped
	b.lastDropped = total
	b.mu.Unlock()
	if delta > 0 {
		b.logger.Warn("notifications dropped before delivery",
			zap.Uint64("dropped", delta),
			zap.Uint64("dropped_total", total),
		)
	}
}
