package printer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/printwatch/internal/printer"
	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/internal/testutil"
	"github.com/HerbHall/printwatch/pkg/models"
)

const addr = "10.0.0.20"

func newAggregator(tr snmp.Transport) *printer.Aggregator {
	cfg := snmp.DefaultConfig()
	client := snmp.NewClient(tr, cfg, nil)
	return printer.NewAggregator(client, cfg.DetailOptions(), printer.DefaultConfig(), nil)
}

func seedLaser(tr *testutil.FakeTransport) {
	tr.SetString(addr, snmp.OIDSysDescr, "HP LaserJet Pro M404dn")
	tr.SetString(addr, snmp.OIDSysName, "finance-lj")
	tr.SetString(addr, snmp.OIDHrDeviceDescr, "HP LaserJet Pro M404dn")
	tr.SetString(addr, printer.OIDSerialNumber, "PHB1234567")
	tr.SetInt(addr, printer.OIDEngineCycles, 48211)
	tr.SetInt(addr, printer.OIDPrinterStatus, 3)
	tr.SetInt(addr, printer.OIDDeviceStatus, 2)

	levels := []int{80, 12, 4, 50, 65}
	for i, lvl := range levels {
		idx := string(rune('1' + i))
		tr.SetInt(addr, "1.3.6.1.2.1.43.11.1.1.9.1."+idx, lvl)
		tr.SetInt(addr, "1.3.6.1.2.1.43.11.1.1.8.1."+idx, 100)
	}

	tr.SetString(addr, "1.3.6.1.2.1.43.8.2.1.13.1.1", "Tray 1")
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.9.1.1", 100)
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.10.1.1", -3)
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.11.1.1", 0)
	tr.SetString(addr, "1.3.6.1.2.1.43.8.2.1.13.1.2", "Tray 2")
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.9.1.2", 250)
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.10.1.2", 120)
	tr.SetInt(addr, "1.3.6.1.2.1.43.8.2.1.11.1.2", 4)

	tr.SetInt(addr, "1.3.6.1.4.1.11.2.3.9.4.2.1.1.1.4.1.0", 256)
	tr.SetString(addr, "1.3.6.1.2.1.43.18.1.1.8.1.1", "Magenta cartridge low")
}

func TestDetails_AllPresent(t *testing.T) {
	tr := testutil.NewFakeTransport()
	seedLaser(tr)

	snap, err := newAggregator(tr).Details(context.Background(), snmp.Target{Address: addr})
	require.NoError(t, err)

	assert.Equal(t, addr, snap.Address)
	assert.Equal(t, models.ProfileLaser, snap.Profile)
	assert.Equal(t, "finance-lj", snap.Info.Name)
	assert.Equal(t, "HP LaserJet Pro M404dn", snap.Info.Model)
	assert.Equal(t, "PHB1234567", snap.Info.SerialNumber)
	assert.Equal(t, "48211", snap.Info.EngineCycles)
	assert.Equal(t, models.OperationalIdle, snap.Info.Status)
	assert.Equal(t, models.HealthRunning, snap.Info.Health)

	require.Len(t, snap.Supplies, 5)
	assert.Equal(t, models.Supply{Name: "black", Value: "80", Level: models.SupplyFull}, snap.Supplies[0])
	assert.Equal(t, models.SupplyLow, snap.Supplies[1].Level)
	assert.Equal(t, models.SupplyVeryLow, snap.Supplies[2].Level)
	assert.Equal(t, "drum", snap.Supplies[4].Name)

	require.Len(t, snap.Trays, 2)
	assert.Equal(t, models.Tray{Index: 1, Name: "Tray 1", Capacity: "100", Current: "Some remaining", State: "idle"}, snap.Trays[0])
	assert.Equal(t, "active", snap.Trays[1].State)

	assert.Equal(t, "256 MB", snap.Memory.OnBoard)
	assert.Equal(t, []string{"Magenta cartridge low"}, snap.DeviceAlerts)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestDetails_AllAbsent(t *testing.T) {
	tr := testutil.NewFakeTransport()

	snap, err := newAggregator(tr).Details(context.Background(), snmp.Target{Address: addr})
	require.NoError(t, err, "agent answering NoSuchObject is still reachable")

	assert.Equal(t, models.ProfileUnknown, snap.Profile)
	assert.Equal(t, models.PlaceholderUnknown, snap.Info.Name)
	assert.Equal(t, models.PlaceholderUnknown, snap.Info.Model)
	assert.Equal(t, models.PlaceholderUnknown, snap.Info.SerialNumber)
	assert.Equal(t, models.PlaceholderUnknown, snap.Info.Description)
	assert.Equal(t, models.OperationalUnknown, snap.Info.Status)
	assert.Equal(t, models.HealthUnknown, snap.Info.Health)

	require.Len(t, snap.Supplies, 1)
	assert.Equal(t, models.Supply{Name: "black", Value: "Unknown", Level: models.SupplyUnknown}, snap.Supplies[0])

	assert.NotNil(t, snap.Trays)
	assert.Empty(t, snap.Trays)
	assert.NotNil(t, snap.DeviceAlerts)
	assert.Empty(t, snap.DeviceAlerts)
	assert.Equal(t, models.PlaceholderNotAvailable, snap.Memory.OnBoard)
}

func TestDetails_ReachableMissingConsumables(t *testing.T) {
	tr := testutil.NewFakeTransport()
	tr.SetString(addr, snmp.OIDSysDescr, "EPSON WF-C5790 WorkForce")

	snap, err := newAggregator(tr).Details(context.Background(), snmp.Target{Address: addr})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileInkjet, snap.Profile)
	require.Len(t, snap.Supplies, 5)
	for _, s := range snap.Supplies {
		assert.Equal(t, "Unknown", s.Value, s.Name)
		assert.Equal(t, models.SupplyUnknown, s.Level, s.Name)
	}
	assert.Equal(t, "maintenance_box", snap.Supplies[4].Name)
}

func TestDetails_SupplyDescriptionDecidesProfile(t *testing.T) {
	tr := testutil.NewFakeTransport()
	tr.SetString(addr, snmp.OIDSysDescr, "Network Printer")
	tr.SetString(addr, printer.OIDSupplyDescription, "Black Toner Cartridge")

	snap, err := newAggregator(tr).Details(context.Background(), snmp.Target{Address: addr})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileLaser, snap.Profile)
}

func TestDetails_UnreachableFailsFast(t *testing.T) {
	tr := testutil.NewFakeTransport()
	tr.SetDown(addr, true)

	_, err := newAggregator(tr).Details(context.Background(), snmp.Target{Address: addr})
	require.Error(t, err)
	assert.True(t, errors.Is(err, printer.ErrUnreachable))
	assert.Equal(t, 1, tr.CallCount(addr), "no probes after failed reachability check")
}

func TestDetails_AddressRequired(t *testing.T) {
	tr := testutil.NewFakeTransport()

	_, err := newAggregator(tr).Details(context.Background(), snmp.Target{})
	assert.True(t, errors.Is(err, snmp.ErrAddressRequired))
	assert.Empty(t, tr.Calls())
}

func TestDetails_TrayWalkStopsAtMax(t *testing.T) {
	tr := testutil.NewFakeTransport()
	for i := 1; i <= 6; i++ {
		tr.SetString(addr, "1.3.6.1.2.1.43.8.2.1.13.1."+string(rune('0'+i)), "Tray")
	}
	agg := printer.NewAggregator(snmp.NewClient(tr, snmp.DefaultConfig(), nil), snmp.DefaultConfig().DetailOptions(),
		printer.Config{MaxTrays: 3, MaxDeviceAlerts: 5}, nil)

	snap, err := agg.Details(context.Background(), snmp.Target{Address: addr})
	require.NoError(t, err)
	assert.Len(t, snap.Trays, 3)
}
