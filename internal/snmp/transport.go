package snmp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Target identifies an SNMP agent. Address is a host or host:port.
type Target struct {
	Address   string
	Community string
}

// Options bounds a single request. Worst-case latency is
// Timeout * (Retries + 1).
type Options struct {
	Timeout time.Duration
	Retries int
}

// Transport performs one SNMP GET for one OID.
type Transport interface {
	Get(ctx context.Context, target Target, oid string, opts Options) (gosnmp.SnmpPDU, error)
}

// errEmptyResponse is returned when the agent replies without varbinds.
var errEmptyResponse = errors.New("empty SNMP response")

// GoSNMPTransport is the default Transport, backed by gosnmp over UDP.
type GoSNMPTransport struct {
	version     gosnmp.SnmpVersion
	defaultPort uint16
}

// NewGoSNMPTransport creates a transport for the given protocol version
// ("1" or "2c") and default port.
func NewGoSNMPTransport(version string, defaultPort int) (*GoSNMPTransport, error) {
	v, err := parseVersion(version)
	if err != nil {
		return nil, err
	}
	if defaultPort <= 0 || defaultPort > 65535 {
		return nil, fmt.Errorf("invalid SNMP port %d", defaultPort)
	}
	return &GoSNMPTransport{version: v, defaultPort: uint16(defaultPort)}, nil
}

// Get connects, issues a single GET and closes the socket.
func (t *GoSNMPTransport) Get(ctx context.Context, target Target, oid string, opts Options) (gosnmp.SnmpPDU, error) {
	g, err := t.newGoSNMP(target, opts)
	if err != nil {
		return gosnmp.SnmpPDU{}, fmt.Errorf("configure SNMP: %w", err)
	}
	g.Context = ctx

	if err := g.Connect(); err != nil {
		return gosnmp.SnmpPDU{}, fmt.Errorf("connect to %s: %w", target.Address, err)
	}
	defer func() { _ = g.Conn.Close() }()

	result, err := g.Get([]string{oid})
	if err != nil {
		return gosnmp.SnmpPDU{}, fmt.Errorf("get %s: %w", oid, err)
	}
	if result.Error != gosnmp.NoError {
		return gosnmp.SnmpPDU{}, fmt.Errorf("get %s: agent error %s", oid, result.Error)
	}
	if len(result.Variables) == 0 {
		return gosnmp.SnmpPDU{}, errEmptyResponse
	}
	return result.Variables[0], nil
}

// newGoSNMP builds an unconnected GoSNMP for the target.
func (t *GoSNMPTransport) newGoSNMP(target Target, opts Options) (*gosnmp.GoSNMP, error) {
	host, portStr, err := net.SplitHostPort(target.Address)
	if err != nil {
		host = target.Address
		portStr = strconv.Itoa(int(t.defaultPort))
	}
	if host == "" {
		return nil, ErrAddressRequired
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	community := target.Community
	if community == "" {
		community = "public"
	}

	return &gosnmp.GoSNMP{
		Target:    host,
		Port:      uint16(port),
		Community: community,
		Version:   t.version,
		Timeout:   opts.Timeout,
		Retries:   opts.Retries,
	}, nil
}

func parseVersion(s string) (gosnmp.SnmpVersion, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "v") {
	case "", "2c", "2":
		return gosnmp.Version2c, nil
	case "1":
		return gosnmp.Version1, nil
	default:
		return 0, fmt.Errorf("unsupported SNMP version %q", s)
	}
}
