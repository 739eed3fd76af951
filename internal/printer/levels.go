package printer

import (
	"strconv"

	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/pkg/models"
)

// BucketLevel maps a remaining percentage to a level bucket.
func BucketLevel(pct int) models.SupplyLevel {
	switch {
	case pct < 0:
		return models.SupplyUnknown
	case pct <= 5:
		return models.SupplyVeryLow
	case pct <= 15:
		return models.SupplyLow
	case pct <= 30:
		return models.SupplyMedium
	case pct <= 70:
		return models.SupplyGood
	default:
		return models.SupplyFull
	}
}

// ParseLevel converts a raw prtMarkerSuppliesLevel reading into a supply
// entry. Negative MIB sentinels (-1 other, -2 unknown, -3 some remaining),
// non-numeric and absent readings yield level unknown. When the device
// reports a maximum capacity other than 100 the level is scaled to a
// percentage.
func ParseLevel(name string, level, maxCapacity snmp.Value) models.Supply {
	s := models.Supply{
		Name:  name,
		Value: level.Or(models.PlaceholderUnknown),
		Level: models.SupplyUnknown,
	}

	n, ok := level.Int()
	if !ok || n < 0 {
		return s
	}

	if capacity, ok := maxCapacity.Int(); ok && capacity > 0 && capacity != 100 {
		n = n * 100 / capacity
		if n > 100 {
			n = 100
		}
		s.Value = strconv.Itoa(n)
	}

	s.Level = BucketLevel(n)
	return s
}

// trayQuantity renders prtInputMaxCapacity / prtInputCurrentLevel.
func trayQuantity(v snmp.Value) string {
	n, ok := v.Int()
	if !ok {
		return v.Or(models.PlaceholderUnknown)
	}
	switch n {
	case -1:
		return "Other"
	case -2:
		return models.PlaceholderUnknown
	case -3:
		return "Some remaining"
	default:
		return strconv.Itoa(n)
	}
}

// trayState decodes a PrtSubUnitStatusTC bitmask.
func trayState(v snmp.Value) string {
	n, ok := v.Int()
	if !ok || n < 0 {
		return models.PlaceholderUnknown
	}
	switch {
	case n&32 != 0:
		return "offline"
	case n&16 != 0:
		return "critical"
	case n&8 != 0:
		return "warning"
	}
	switch n & 7 {
	case 0:
		return "idle"
	case 2:
		return "standby"
	case 4:
		return "active"
	case 6:
		return "busy"
	case 1:
		return "unavailable"
	case 3:
		return "broken"
	default:
		return "unknown"
	}
}
