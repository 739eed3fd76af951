// Command printwatch serves the printer monitoring API and runs the
// background poller.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/alert"
	"github.com/HerbHall/printwatch/internal/api"
	"github.com/HerbHall/printwatch/internal/auth"
	"github.com/HerbHall/printwatch/internal/config"
	"github.com/HerbHall/printwatch/internal/devices"
	"github.com/HerbHall/printwatch/internal/monitor"
	"github.com/HerbHall/printwatch/internal/notify"
	"github.com/HerbHall/printwatch/internal/printer"
	"github.com/HerbHall/printwatch/internal/server"
	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/internal/store"
	"github.com/HerbHall/printwatch/internal/version"
	"github.com/HerbHall/printwatch/internal/ws"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Println(version.Info())
			return
		case "token":
			if err := runToken(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "token: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "printwatch: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	v, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

func run(configPath string) error {
	// Configuration comes first so log level and format can be configured.
	cfg, source, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("PrintWatch server starting", zap.String("version", version.Short()))
	if source != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", source),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		return err
	}
	if err := db.Migrate(ctx, "devices", devices.Migrations()); err != nil {
		return err
	}
	if err := db.Migrate(ctx, "alerts", alert.Migrations()); err != nil {
		return err
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", cfg.Database.Path),
	)

	registry := devices.NewStore(db.DB())
	ledger := alert.NewStore(db.DB())

	// SNMP probing
	transport, err := snmp.NewGoSNMPTransport(cfg.SNMP.Version, cfg.SNMP.Port)
	if err != nil {
		return fmt.Errorf("failed to create SNMP transport: %w", err)
	}
	client := snmp.NewClient(transport, cfg.SNMP, logger.Named("snmp"))
	aggregator := printer.NewAggregator(client, cfg.SNMP.DetailOptions(), cfg.Printer, logger.Named("printer"))

	// Notification relay: monitor -> queue -> broadcaster -> websocket hub.
	queue := notify.NewQueue(cfg.Notify.QueueSize)
	hub := ws.NewHub(logger.Named("ws"))
	prometheus.MustRegister(hub.Collector())
	broadcaster := notify.NewBroadcaster(queue, hub, cfg.Notify.DrainInterval, logger.Named("notify"))
	broadcaster.Start(ctx)

	mon := monitor.New(registry, ledger, client, queue, cfg.Monitor, logger.Named("monitor"))
	scheduler := monitor.NewScheduler(mon, cfg.Monitor.Interval, logger.Named("monitor"))
	if cfg.Monitor.Enabled {
		scheduler.Start(ctx)
	} else {
		logger.Info("background monitoring disabled", zap.String("component", "monitor"))
	}
	maintenance := monitor.NewMaintenance(ledger, cfg.Monitor, logger.Named("maintenance"))
	maintenance.Start(ctx)

	// Auth
	secret, err := jwtSecret(cfg.Auth.JWTSecret, logger)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(secret, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	apiHandler := api.NewHandler(api.Deps{
		Printers:  registry,
		Alerts:    ledger,
		Prober:    client,
		Details:   aggregator,
		Monitor:   mon,
		Publisher: queue,
	}, logger.Named("api"))
	wsHandler := ws.NewHandler(hub, tokens, func() { broadcaster.Flush() }, logger.Named("ws"))

	readyCheck := server.ReadinessChecker(db.Ping)
	srv := server.New(cfg.Server, logger, readyCheck, auth.AuthMiddleware(tokens), apiHandler, wsHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	logger.Info("PrintWatch server ready", zap.String("addr", cfg.Server.Addr()))

	// Wait for shutdown signal or server failure.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	scheduler.Stop()
	maintenance.Stop()
	broadcaster.Stop()
	cancel()

	logger.Info("PrintWatch server stopped")
	return nil
}

// jwtSecret returns the configured secret or an ephemeral one.
func jwtSecret(configured string, logger *zap.Logger) ([]byte, error) {
	if configured != "" {
		logger.Info("JWT secret loaded from configuration", zap.String("component", "auth"))
		return []byte(configured), nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	logger.Warn("using auto-generated JWT secret; set auth.jwt_secret to keep tokens valid across restarts",
		zap.String("component", "auth"),
	)
	return []byte(hex.EncodeToString(b)), nil
}

// runToken mints an access token signed with the configured secret.
func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	user := fs.String("user", "", "username to embed in the token")
	role := fs.String("role", "admin", "role claim")
	ttl := fs.Duration("ttl", 0, "token lifetime (default auth.access_token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured; tokens would not verify against the server")
	}

	lifetime := cfg.Auth.AccessTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), lifetime)
	if err != nil {
		return err
	}
	tok, err := tokens.IssueAccessToken(*user, *user, *role)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
