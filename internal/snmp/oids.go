package snmp

// System and host-resources OIDs shared by every device class.
const (
	OIDSysDescr      = "1.3.6.1.2.1.1.1.0"
	OIDSysName       = "1.3.6.1.2.1.1.5.0"
	OIDHrDeviceDescr = "1.3.6.1.2.1.25.3.2.1.3.1"
)
