// Package monitor polls the printer fleet and raises connection alerts on
// online to offline transitions.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/alert"
	"github.com/HerbHall/printwatch/internal/notify"
	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/pkg/models"
)

// Messages recorded for a connection loss.
const (
	alertMessage = "Printer is offline or unreachable"
	eventMessage = "Printer offline"
)

// Config controls polling.
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Interval        time.Duration `mapstructure:"interval"`
	DeviceTimeout   time.Duration `mapstructure:"device_timeout"`
	MaxWorkers      int           `mapstructure:"max_workers"`
	RealertAfterAck bool          `mapstructure:"realert_after_ack"`

	AlertRetention      time.Duration `mapstructure:"alert_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns the reference polling settings.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		Interval:            30 * time.Second,
		DeviceTimeout:       15 * time.Second,
		MaxWorkers:          1,
		AlertRetention:      30 * 24 * time.Hour,
		MaintenanceInterval: time.Hour,
	}
}

// Registry is the printer store as seen by the monitor.
type Registry interface {
	ListActive(ctx context.Context) ([]models.Printer, error)
	UpdateStatus(ctx context.Context, id string, status models.PrinterStatus, polledAt time.Time) error
}

// Ledger is the alert store as seen by the monitor.
type Ledger interface {
	ActiveForDevice(ctx context.Context, deviceID, kind string) (*alert.Alert, error)
	Create(ctx context.Context, a *alert.Alert) error
}

// Prober checks reachability.
type Prober interface {
	TestConnection(ctx context.Context, target snmp.Target) (snmp.ConnectionResult, error)
}

// Publisher accepts best-effort notifications.
type Publisher interface {
	Publish(e notify.Event) error
}

// CycleSummary reports the outcome of one RunCycle.
type CycleSummary struct {
	Checked      int           `json:"checked"`
	Online       int           `json:"online"`
	Offline      int           `json:"offline"`
	AlertsRaised int           `json:"alerts_raised"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration_ns"`
}

// outcome is the result of checking one printer.
type outcome struct {
	checked   bool
	probed    bool
	reachable bool
	alerted   bool
	err       error
}

// Monitor runs reachability cycles over the active fleet.
type Monitor struct {
	registry  Registry
	ledger    Ledger
	prober    Prober
	publisher Publisher
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time

	// mu serializes cycles started by the scheduler and on demand.
	mu sync.Mutex
}

// New creates a Monitor.
func New(registry Registry, ledger Ledger, prober Prober, publisher Publisher, cfg Config, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	return &Monitor{
		registry:  registry,
		ledger:    ledger,
		prober:    prober,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunCycle checks every active printer once. Failures are contained per
// printer and reported in the summary; the cycle itself never fails.
func (m *Monitor) RunCycle(ctx context.Context) CycleSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	var sum CycleSummary

	printers, err := m.registry.ListActive(ctx)
	if err != nil {
		m.logger.Warn("failed to load printers", zap.Error(err))
		sum.Errors++
		sum.Duration = time.Since(start)
		return sum
	}

	outcomes := make([]outcome, len(printers))
	sem := make(chan struct{}, m.cfg.MaxWorkers)
	var wg sync.WaitGroup

dispatch:
	for i := range printers {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = m.checkPrinter(ctx, printers[i])
		}(i)
	}
	wg.Wait()

	for _, o := range outcomes {
		if !o.checked {
			continue
		}
		sum.Checked++
		if o.err != nil {
			sum.Errors++
		}
		if o.probed {
			if o.reachable {
				sum.Online++
			} else {
				sum.Offline++
			}
		}
		if o.alerted {
			sum.AlertsRaised++
		}
	}
	sum.Duration = time.Since(start)

	cyclesTotal.Inc()
	cycleDuration.Observe(sum.Duration.Seconds())
	m.logger.Info("monitoring cycle complete",
		zap.Int("checked", sum.Checked),
		zap.Int("online", sum.Online),
		zap.Int("offline", sum.Offline),
		zap.Int("alerts", sum.AlertsRaised),
		zap.Int("errors", sum.Errors),
		zap.Duration("duration", sum.Duration),
	)
	return sum
}

// checkPrinter polls one printer and records the result. A panic here is
// converted into an error outcome.
func (m *Monitor) checkPrinter(ctx context.Context, p models.Printer) (out outcome) {
	log := m.logger.With(zap.String("printer_id", p.ID), zap.String("address", p.Address))
	defer func() {
		if r := recover(); r != nil {
			log.Error("printer check panicked", zap.Any("panic", r))
			deviceChecksTotal.WithLabelValues("error").Inc()
			out = outcome{checked: true, err: fmt.Errorf("printer check panicked: %v", r)}
		}
	}()

	dctx, cancel := context.WithTimeout(ctx, m.cfg.DeviceTimeout)
	res, err := m.prober.TestConnection(dctx, snmp.Target{Address: p.Address, Community: p.Community})
	cancel()
	if err != nil {
		log.Warn("printer check failed", zap.Error(err))
		deviceChecksTotal.WithLabelValues("error").Inc()
		return outcome{checked: true, err: err}
	}
	out = outcome{checked: true, probed: true, reachable: res.Reachable}

	status := models.PrinterStatusOnline
	if !res.Reachable {
		status = models.PrinterStatusOffline
	}
	deviceChecksTotal.WithLabelValues(string(status)).Inc()

	// The offline status is only stored once the transition has an alert
	// record, so a failed alert write is retried on the next poll.
	if !res.Reachable {
		alerted, err := m.raiseOffline(ctx, p, log)
		out.alerted = alerted
		if err != nil {
			out.err = err
			status = p.Status
		}
	}

	if err := m.registry.UpdateStatus(ctx, p.ID, status, m.now()); err != nil {
		log.Warn("failed to update printer status", zap.Error(err))
		if out.err == nil {
			out.err = err
		}
	}
	return out
}

// raiseOffline records a connection alert for an unreachable printer when
// the poll is a transition into offline (or, with RealertAfterAck, whenever
// no alert is open) and then publishes a notification. A failed alert write
// suppresses the notification; a failed publish keeps the alert.
func (m *Monitor) raiseOffline(ctx context.Context, p models.Printer, log *zap.Logger) (bool, error) {
	if p.Status == models.PrinterStatusOffline && !m.cfg.RealertAfterAck {
		return false, nil
	}

	active, err := m.ledger.ActiveForDevice(ctx, p.ID, alert.KindConnection)
	if err != nil {
		log.Warn("failed to look up open alert", zap.Error(err))
		return false, err
	}
	if active != nil {
		log.Debug("open connection alert exists, not raising another", zap.String("alert_id", active.ID))
		return false, nil
	}

	a := &alert.Alert{
		DeviceID:   p.ID,
		DeviceName: p.Name,
		Kind:       alert.KindConnection,
		Severity:   alert.SeverityHigh,
		Message:    alertMessage,
	}
	if err := m.ledger.Create(ctx, a); err != nil {
		if errors.Is(err, alert.ErrActiveAlertExists) {
			return false, nil
		}
		log.Warn("failed to persist alert", zap.Error(err))
		return false, err
	}
	alertsRaisedTotal.Inc()
	log.Info("printer went offline, alert raised", zap.String("alert_id", a.ID))

	if err := m.publisher.Publish(notify.Event{
		Type:      notify.EventPrinterAlert,
		DeviceID:  p.ID,
		Message:   eventMessage,
		Status:    string(models.PrinterStatusOffline),
		Timestamp: a.CreatedAt,
	}); err != nil {
		log.Warn("failed to publish notification", zap.Error(err))
	}
	return true, nil
}
