package printer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/pkg/models"
)

// ErrUnreachable is returned when the agent does not answer the
// reachability check. No further probes are issued.
var ErrUnreachable = errors.New("cannot connect to printer via SNMP")

// Prober is the subset of snmp.Client the aggregator needs.
type Prober interface {
	TestConnection(ctx context.Context, target snmp.Target) (snmp.ConnectionResult, error)
	Get(ctx context.Context, target snmp.Target, oid string, opts snmp.Options) snmp.Value
	GetBatch(ctx context.Context, target snmp.Target, probes []snmp.Probe) snmp.Batch
}

// Config bounds the table walks and the overall detail budget.
type Config struct {
	MaxTrays        int           `mapstructure:"max_trays"`
	MaxDeviceAlerts int           `mapstructure:"max_device_alerts"`
	DetailTimeout   time.Duration `mapstructure:"detail_timeout"`
}

// DefaultConfig returns the reference limits.
func DefaultConfig() Config {
	return Config{
		MaxTrays:        4,
		MaxDeviceAlerts: 5,
		DetailTimeout:   60 * time.Second,
	}
}

// Aggregator assembles a Snapshot from a batch of probes.
type Aggregator struct {
	prober Prober
	opts   snmp.Options
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator. opts applies to the individual table
// probes issued outside GetBatch.
func NewAggregator(prober Prober, opts snmp.Options, cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		prober: prober,
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Timeout returns the budget callers should apply around Details.
func (a *Aggregator) Timeout() time.Duration { return a.cfg.DetailTimeout }

const (
	fieldName         = "name"
	fieldModel        = "model"
	fieldSerial       = "serial_number"
	fieldEngineCycles = "engine_cycles"
	fieldStatus       = "status"
	fieldHealth       = "health"
)

var identityProbes = []snmp.Probe{
	{Field: fieldName, OID: snmp.OIDSysName},
	{Field: fieldModel, OID: snmp.OIDHrDeviceDescr},
	{Field: fieldSerial, OID: OIDSerialNumber},
	{Field: fieldEngineCycles, OID: OIDEngineCycles},
	{Field: fieldStatus, OID: OIDPrinterStatus},
	{Field: fieldHealth, OID: OIDDeviceStatus},
}

// Details probes a printer and returns its normalized snapshot. It fails
// only on input validation or when the device is unreachable; every other
// missing field is filled with a placeholder.
func (a *Aggregator) Details(ctx context.Context, target snmp.Target) (*models.Snapshot, error) {
	conn, err := a.prober.TestConnection(ctx, target)
	if err != nil {
		return nil, err
	}
	if !conn.Reachable {
		return nil, fmt.Errorf("%s: %w", target.Address, ErrUnreachable)
	}

	ident := a.prober.GetBatch(ctx, target, identityProbes)
	model := ident.Value(fieldModel).Or("")

	profile := DetectProfile(conn.Description, model, "")
	if profile == models.ProfileUnknown {
		supplyDescr := a.prober.Get(ctx, target, OIDSupplyDescription, a.opts)
		profile = DetectProfile("", "", supplyDescr.Or(""))
	}

	snap := &models.Snapshot{
		Address: target.Address,
		Profile: profile,
		Info: models.PrinterInfo{
			Name:         ident.Value(fieldName).Or(models.PlaceholderUnknown),
			Model:        ident.Value(fieldModel).Or(models.PlaceholderUnknown),
			SerialNumber: ident.Value(fieldSerial).Or(models.PlaceholderUnknown),
			Description:  snmp.Present(conn.Description).Or(models.PlaceholderUnknown),
			EngineCycles: ident.Value(fieldEngineCycles).Or(models.PlaceholderUnknown),
			Status:       models.OperationalStatus(snmp.PrinterStatusTable.LabelValue(ident.Value(fieldStatus))),
			Health:       models.DeviceHealth(snmp.DeviceStatusTable.LabelValue(ident.Value(fieldHealth))),
		},
		Supplies:     a.supplies(ctx, target, profile),
		Trays:        a.trays(ctx, target),
		Memory:       a.memory(ctx, target),
		DeviceAlerts: a.deviceAlerts(ctx, target),
		CollectedAt:  a.now(),
	}

	a.logger.Debug("printer details collected",
		zap.String("address", target.Address),
		zap.String("profile", string(profile)),
		zap.Int("supplies", len(snap.Supplies)),
		zap.Int("trays", len(snap.Trays)),
	)
	return snap, nil
}

func (a *Aggregator) supplies(ctx context.Context, target snmp.Target, profile models.Profile) []models.Supply {
	consumables := ConsumablesFor(profile)
	probes := make([]snmp.Probe, 0, len(consumables)*2)
	for _, c := range consumables {
		probes = append(probes,
			snmp.Probe{Field: c.Name, OID: indexed(oidSupplyLevel, c.Index)},
			snmp.Probe{Field: c.Name + "_max", OID: indexed(oidSupplyMax, c.Index)},
		)
	}
	batch := a.prober.GetBatch(ctx, target, probes)

	out := make([]models.Supply, 0, len(consumables))
	for _, c := range consumables {
		out = append(out, ParseLevel(c.Name, batch.Value(c.Name), batch.Value(c.Name+"_max")))
	}
	return out
}

// trays walks prtInputTable rows until the first row without a name.
func (a *Aggregator) trays(ctx context.Context, target snmp.Target) []models.Tray {
	out := make([]models.Tray, 0, a.cfg.MaxTrays)
	for i := 1; i <= a.cfg.MaxTrays; i++ {
		name := a.prober.Get(ctx, target, indexed(oidTrayName, i), a.opts)
		if !name.IsPresent() {
			break
		}
		row := a.prober.GetBatch(ctx, target, []snmp.Probe{
			{Field: "capacity", OID: indexed(oidTrayCapacity, i)},
			{Field: "current", OID: indexed(oidTrayCurrent, i)},
			{Field: "state", OID: indexed(oidTrayStatus, i)},
		})
		out = append(out, models.Tray{
			Index:    i,
			Name:     name.Or(models.PlaceholderUnknown),
			Capacity: trayQuantity(row.Value("capacity")),
			Current:  trayQuantity(row.Value("current")),
			State:    trayState(row.Value("state")),
		})
	}
	return out
}

func (a *Aggregator) memory(ctx context.Context, target snmp.Target) models.Memory {
	for _, oid := range memoryOIDs {
		if v, ok := a.prober.Get(ctx, target, oid, a.opts).Get(); ok {
			return models.Memory{OnBoard: v + " MB"}
		}
	}
	return models.Memory{OnBoard: models.PlaceholderNotAvailable}
}

// deviceAlerts reads prtAlertDescription rows until the first gap.
func (a *Aggregator) deviceAlerts(ctx context.Context, target snmp.Target) []string {
	out := make([]string, 0)
	for i := 1; i <= a.cfg.MaxDeviceAlerts; i++ {
		v, ok := a.prober.Get(ctx, target, indexed(oidAlertDescr, i), a.opts).Get()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}
