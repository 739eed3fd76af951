package models

import "time"

// Placeholders used when a device does not answer for a field.
const (
	PlaceholderUnknown      = "Unknown"
	PlaceholderNotAvailable = "Not available"
)

// SupplyLevel is a coarse bucket for a consumable's remaining percentage.
type SupplyLevel string

const (
	SupplyVeryLow SupplyLevel = "very-low"
	SupplyLow     SupplyLevel = "low"
	SupplyMedium  SupplyLevel = "medium"
	SupplyGood    SupplyLevel = "good"
	SupplyFull    SupplyLevel = "full"
	SupplyUnknown SupplyLevel = "unknown"
)

// OperationalStatus mirrors hrPrinterStatus.
type OperationalStatus string

const (
	OperationalOther    OperationalStatus = "other"
	OperationalUnknown  OperationalStatus = "unknown"
	OperationalIdle     OperationalStatus = "idle"
	OperationalPrinting OperationalStatus = "printing"
	OperationalWarmup   OperationalStatus = "warmup"
)

// DeviceHealth mirrors hrDeviceStatus.
type DeviceHealth string

const (
	HealthUnknown DeviceHealth = "unknown"
	HealthRunning DeviceHealth = "running"
	HealthWarning DeviceHealth = "warning"
	HealthTesting DeviceHealth = "testing"
	HealthDown    DeviceHealth = "down"
)

// PrinterInfo holds identity fields read from the device.
type PrinterInfo struct {
	Name         string            `json:"name"`
	Model        string            `json:"model"`
	SerialNumber string            `json:"serial_number"`
	Description  string            `json:"system_description"`
	EngineCycles string            `json:"engine_cycles"`
	Status       OperationalStatus `json:"status"`
	Health       DeviceHealth      `json:"health"`
}

// Supply is one consumable. Value is the percentage as reported (or scaled
// from the device's max capacity), or "Unknown".
type Supply struct {
	Name  string      `json:"name"`
	Value string      `json:"value"`
	Level SupplyLevel `json:"level"`
}

// Tray is one paper input from the prtInputTable.
type Tray struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Capacity string `json:"capacity"`
	Current  string `json:"current"`
	State    string `json:"state"`
}

// Memory describes on-board memory.
type Memory struct {
	OnBoard string `json:"on_board"`
}

// Snapshot is the normalized, point-in-time view of one printer assembled
// from a batch of probes. Absent fields carry placeholders, never nil.
type Snapshot struct {
	Address      string      `json:"ip_address"`
	Profile      Profile     `json:"profile"`
	Info         PrinterInfo `json:"printer_info"`
	Supplies     []Supply    `json:"supplies"`
	Trays        []Tray      `json:"trays"`
	Memory       Memory      `json:"memory"`
	DeviceAlerts []string    `json:"device_alerts"`
	CollectedAt  time.Time   `json:"collected_at"`
}
