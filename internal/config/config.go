// Package config loads PrintWatch configuration from file, environment and
// defaults into typed per-component sections.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/HerbHall/printwatch/internal/monitor"
	"github.com/HerbHall/printwatch/internal/notify"
	"github.com/HerbHall/printwatch/internal/printer"
	"github.com/HerbHall/printwatch/internal/server"
	"github.com/HerbHall/printwatch/internal/snmp"
)

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig configures access token signing.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// Config is the full application configuration.
type Config struct {
	Server   server.Config  `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	SNMP     snmp.Config    `mapstructure:"snmp"`
	Printer  printer.Config `mapstructure:"printer"`
	Monitor  monitor.Config `mapstructure:"monitor"`
	Notify   notify.Config  `mapstructure:"notify"`
}

// Load reads configuration from file and environment variables.
// An empty configPath searches ".", "./configs" and "/etc/printwatch" for
// printwatch.yaml; a missing file is not an error.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("printwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/printwatch")
	}

	// Environment variable support: PW_SERVER_PORT=9090
	v.SetEnvPrefix("PW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late or silently.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("auth.access_token_ttl must be positive")
	}
	if err := c.SNMP.Validate(); err != nil {
		return fmt.Errorf("snmp: %w", err)
	}
	if c.Printer.MaxTrays < 0 || c.Printer.MaxDeviceAlerts < 0 {
		return errors.New("printer limits must not be negative")
	}
	if c.Printer.DetailTimeout <= 0 {
		return errors.New("printer.detail_timeout must be positive")
	}
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		return errors.New("monitor.interval must be positive")
	}
	if c.Monitor.DeviceTimeout <= 0 {
		return errors.New("monitor.device_timeout must be positive")
	}
	if c.Monitor.MaxWorkers < 1 {
		return errors.New("monitor.max_workers must be at least 1")
	}
	if c.Monitor.AlertRetention < 0 || c.Monitor.MaintenanceInterval < 0 {
		return errors.New("monitor retention settings must not be negative")
	}
	if c.Notify.QueueSize < 1 {
		return errors.New("notify.queue_size must be at least 1")
	}
	if c.Notify.DrainInterval <= 0 {
		return errors.New("notify.drain_interval must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	srv := server.DefaultConfig()
	v.SetDefault("server.host", srv.Host)
	v.SetDefault("server.port", srv.Port)
	v.SetDefault("server.read_timeout", srv.ReadTimeout)
	v.SetDefault("server.write_timeout", srv.WriteTimeout)
	v.SetDefault("server.idle_timeout", srv.IdleTimeout)
	v.SetDefault("server.rate_limit", srv.RateLimit)
	v.SetDefault("server.rate_burst", srv.RateBurst)

	v.SetDefault("database.path", "./data/printwatch.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "24h")

	sn := snmp.DefaultConfig()
	v.SetDefault("snmp.version", sn.Version)
	v.SetDefault("snmp.port", sn.Port)
	v.SetDefault("snmp.timeout", sn.Timeout)
	v.SetDefault("snmp.retries", sn.Retries)
	v.SetDefault("snmp.test_timeout", sn.TestTimeout)
	v.SetDefault("snmp.test_retries", sn.TestRetries)

	pr := printer.DefaultConfig()
	v.SetDefault("printer.max_trays", pr.MaxTrays)
	v.SetDefault("printer.max_device_alerts", pr.MaxDeviceAlerts)
	v.SetDefault("printer.detail_timeout", pr.DetailTimeout)

	mon := monitor.DefaultConfig()
	v.SetDefault("monitor.enabled", mon.Enabled)
	v.SetDefault("monitor.interval", mon.Interval)
	v.SetDefault("monitor.device_timeout", mon.DeviceTimeout)
	v.SetDefault("monitor.max_workers", mon.MaxWorkers)
	v.SetDefault("monitor.realert_after_ack", mon.RealertAfterAck)
	v.SetDefault("monitor.alert_retention", mon.AlertRetention)
	v.SetDefault("monitor.maintenance_interval", mon.MaintenanceInterval)

	nt := notify.DefaultConfig()
	v.SetDefault("notify.queue_size", nt.QueueSize)
	v.SetDefault("notify.drain_interval", nt.DrainInterval)
}
