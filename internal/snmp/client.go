package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrAddressRequired is returned before any network I/O when a target has
// no address.
var ErrAddressRequired = errors.New("printer address is required")

// Config holds protocol and timing defaults for the client.
type Config struct {
	Version     string        `mapstructure:"version"`
	Port        int           `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	TestTimeout time.Duration `mapstructure:"test_timeout"`
	TestRetries int           `mapstructure:"test_retries"`
}

// DefaultConfig returns the reference timing: detail probes 2s x 2 retries,
// reachability checks 1s x 1 retry.
func DefaultConfig() Config {
	return Config{
		Version:     "2c",
		Port:        161,
		Timeout:     2 * time.Second,
		Retries:     2,
		TestTimeout: 1 * time.Second,
		TestRetries: 1,
	}
}

// Validate reports an unsupported version or non-positive timing.
func (c Config) Validate() error {
	if _, err := parseVersion(c.Version); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("snmp port %d out of range", c.Port)
	}
	if c.Timeout <= 0 || c.TestTimeout <= 0 {
		return errors.New("snmp timeouts must be positive")
	}
	if c.Retries < 0 || c.TestRetries < 0 {
		return errors.New("snmp retries must not be negative")
	}
	return nil
}

// DetailOptions returns the options used for data probes.
func (c Config) DetailOptions() Options {
	return Options{Timeout: c.Timeout, Retries: c.Retries}
}

// TestOptions returns the options used for reachability checks.
func (c Config) TestOptions() Options {
	return Options{Timeout: c.TestTimeout, Retries: c.TestRetries}
}

// Probe names a field and the OID that supplies it.
type Probe struct {
	Field string
	OID   string
}

// Batch maps field names to probe results.
type Batch map[string]Value

// Value returns the result for field, Absent if it was not probed.
func (b Batch) Value(field string) Value {
	return b[field]
}

// ConnectionResult describes a reachability check.
type ConnectionResult struct {
	Reachable   bool   `json:"success"`
	Description string `json:"system_description,omitempty"`
	Name        string `json:"system_name,omitempty"`
	Model       string `json:"model,omitempty"`
	Message     string `json:"message"`
}

// Client issues SNMP probes through a Transport and normalizes the results.
type Client struct {
	transport Transport
	cfg       Config
	logger    *zap.Logger
}

// NewClient creates a probe client.
func NewClient(transport Transport, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{transport: transport, cfg: cfg, logger: logger}
}

// Config returns the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// Get reads one OID. Every failure collapses into Absent.
func (c *Client) Get(ctx context.Context, target Target, oid string, opts Options) Value {
	if ctx.Err() != nil || strings.TrimSpace(target.Address) == "" {
		return Absent()
	}
	pdu, err := c.transport.Get(ctx, target, oid, opts)
	if err != nil {
		c.logger.Debug("snmp get failed",
			zap.String("address", target.Address),
			zap.String("oid", oid),
			zap.Error(err),
		)
		return Absent()
	}
	s, ok := decodePDU(pdu)
	if !ok {
		return Absent()
	}
	return Present(s)
}

// GetBatch issues probes sequentially in declared order using the detail
// options.
func (c *Client) GetBatch(ctx context.Context, target Target, probes []Probe) Batch {
	out := make(Batch, len(probes))
	opts := c.cfg.DetailOptions()
	for _, p := range probes {
		out[p.Field] = c.Get(ctx, target, p.OID, opts)
	}
	return out
}

// TestConnection checks reachability with a single sysDescr read. Any agent
// reply counts as reachable, including exception values. The error return is
// reserved for input validation.
func (c *Client) TestConnection(ctx context.Context, target Target) (ConnectionResult, error) {
	if strings.TrimSpace(target.Address) == "" {
		return ConnectionResult{}, ErrAddressRequired
	}
	if ctx.Err() != nil {
		return ConnectionResult{Message: "Failed to connect to printer"}, nil
	}

	pdu, err := c.transport.Get(ctx, target, OIDSysDescr, c.cfg.TestOptions())
	if err != nil {
		c.logger.Debug("connection test failed",
			zap.String("address", target.Address),
			zap.Error(err),
		)
		return ConnectionResult{Message: "Failed to connect to printer"}, nil
	}

	desc, _ := decodePDU(pdu)
	return ConnectionResult{
		Reachable:   true,
		Description: desc,
		Message:     "Successfully connected to printer",
	}, nil
}

// Identify runs TestConnection and, when reachable, reads sysName and
// hrDeviceDescr.
func (c *Client) Identify(ctx context.Context, target Target) (ConnectionResult, error) {
	res, err := c.TestConnection(ctx, target)
	if err != nil || !res.Reachable {
		return res, err
	}
	opts := c.cfg.DetailOptions()
	res.Name = c.Get(ctx, target, OIDSysName, opts).Or("")
	res.Model = c.Get(ctx, target, OIDHrDeviceDescr, opts).Or("")
	return res, nil
}
