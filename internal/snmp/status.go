package snmp

// StatusTable maps a contiguous range of enumerated integer codes to labels.
// Codes outside the range, and non-numeric or absent values, map to Default.
type StatusTable struct {
	First   int
	Labels  []string
	Default string
}

// Label returns the label for code.
func (t StatusTable) Label(code int) string {
	i := code - t.First
	if i < 0 || i >= len(t.Labels) {
		return t.Default
	}
	return t.Labels[i]
}

// LabelValue resolves a probe value through the table.
func (t StatusTable) LabelValue(v Value) string {
	n, ok := v.Int()
	if !ok {
		return t.Default
	}
	return t.Label(n)
}

// PrinterStatusTable maps hrPrinterStatus (HOST-RESOURCES-MIB).
var PrinterStatusTable = StatusTable{
	First:   1,
	Labels:  []string{"other", "unknown", "idle", "printing", "warmup"},
	Default: "unknown",
}

// DeviceStatusTable maps hrDeviceStatus (HOST-RESOURCES-MIB).
var DeviceStatusTable = StatusTable{
	First:   1,
	Labels:  []string{"unknown", "running", "warning", "testing", "down"},
	Default: "unknown",
}
