package printer

import (
	"fmt"

	"github.com/HerbHall/printwatch/pkg/models"
)

// Printer-MIB (RFC 3805) and HOST-RESOURCES-MIB objects for device 1.
const (
	OIDSerialNumber      = "1.3.6.1.2.1.43.5.1.1.17.1"
	OIDEngineCycles      = "1.3.6.1.2.1.43.10.2.1.4.1.1"
	OIDSupplyDescription = "1.3.6.1.2.1.43.11.1.1.6.1.1"
	OIDPrinterStatus     = "1.3.6.1.2.1.25.3.5.1.1.1"
	OIDDeviceStatus      = "1.3.6.1.2.1.25.3.2.1.5.1"
)

// Table column prefixes; the row index is appended.
const (
	oidSupplyLevel  = "1.3.6.1.2.1.43.11.1.1.9.1"
	oidSupplyMax    = "1.3.6.1.2.1.43.11.1.1.8.1"
	oidTrayName     = "1.3.6.1.2.1.43.8.2.1.13.1"
	oidTrayCapacity = "1.3.6.1.2.1.43.8.2.1.9.1"
	oidTrayCurrent  = "1.3.6.1.2.1.43.8.2.1.10.1"
	oidTrayStatus   = "1.3.6.1.2.1.43.8.2.1.11.1"
	oidAlertDescr   = "1.3.6.1.2.1.43.18.1.1.8.1"
)

// Memory OIDs, tried in order until one answers.
var memoryOIDs = []string{
	"1.3.6.1.4.1.11.2.3.9.4.2.1.1.1.4.1.0", // HP on-board
	"1.3.6.1.2.1.43.5.1.1.3.1",             // Printer-MIB general group
	"1.3.6.1.2.1.25.2.3.1.5.1",             // hrStorageSize
}

func indexed(prefix string, i int) string {
	return fmt.Sprintf("%s.%d", prefix, i)
}

// Consumable is one marker supply slot.
type Consumable struct {
	Name  string
	Index int
}

var (
	laserConsumables = []Consumable{
		{"black", 1}, {"cyan", 2}, {"magenta", 3}, {"yellow", 4}, {"drum", 5},
	}
	inkjetConsumables = []Consumable{
		{"black", 1}, {"cyan", 2}, {"magenta", 3}, {"yellow", 4}, {"maintenance_box", 5},
	}
	genericConsumables = []Consumable{
		{"black", 1},
	}
)

// ConsumablesFor returns the supply slots probed for a profile.
func ConsumablesFor(p models.Profile) []Consumable {
	switch p {
	case models.ProfileLaser:
		return laserConsumables
	case models.ProfileInkjet:
		return inkjetConsumables
	default:
		return genericConsumables
	}
}
