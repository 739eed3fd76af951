package models

import "time"

// PrinterStatus is the last known reachability of a printer.
type PrinterStatus string

const (
	PrinterStatusOnline  PrinterStatus = "online"
	PrinterStatusOffline PrinterStatus = "offline"
	PrinterStatusUnknown PrinterStatus = "unknown"
)

// Profile identifies the printer family. It selects which consumable OIDs
// are probed.
type Profile string

const (
	ProfileInkjet  Profile = "inkjet"
	ProfileLaser   Profile = "laser"
	ProfileUnknown Profile = "unknown"
)

// Printer is a registered SNMP printer.
type Printer struct {
	ID           string        `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name         string        `json:"name" example:"Finance LaserJet"`
	Address      string        `json:"ip_address" example:"192.168.1.50"`
	Community    string        `json:"-"`
	Profile      Profile       `json:"profile" example:"laser"`
	Model        string        `json:"model,omitempty" example:"HP LaserJet M404dn"`
	Location     string        `json:"location,omitempty" example:"2nd floor"`
	Status       PrinterStatus `json:"status" example:"online"`
	Active       bool          `json:"is_active"`
	LastPolledAt *time.Time    `json:"last_polled_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
