// Package api provides the REST handlers for printers, details, monitoring
// and alerts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/alert"
	"github.com/HerbHall/printwatch/internal/devices"
	"github.com/HerbHall/printwatch/internal/monitor"
	"github.com/HerbHall/printwatch/internal/notify"
	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/pkg/models"
)

// PrinterStore is the registry as seen by the handlers.
type PrinterStore interface {
	Create(ctx context.Context, p *models.Printer) error
	Get(ctx context.Context, id string) (*models.Printer, error)
	GetByAddress(ctx context.Context, address string) (*models.Printer, error)
	List(ctx context.Context) ([]models.Printer, error)
	Update(ctx context.Context, id string, u devices.Update) (*models.Printer, error)
	Delete(ctx context.Context, id string) error
}

// AlertLedger is the alert store as seen by the handlers.
type AlertLedger interface {
	ListUnacknowledged(ctx context.Context) ([]alert.Alert, error)
	ListForDevice(ctx context.Context, deviceID string, limit int) ([]alert.Alert, error)
	Acknowledge(ctx context.Context, id, by string) (bool, error)
	AcknowledgeAll(ctx context.Context, by string) (int64, error)
}

// Identifier checks reachability and reads identity.
type Identifier interface {
	Identify(ctx context.Context, target snmp.Target) (snmp.ConnectionResult, error)
}

// DetailSource assembles printer snapshots.
type DetailSource interface {
	Details(ctx context.Context, target snmp.Target) (*models.Snapshot, error)
	Timeout() time.Duration
}

// CycleRunner runs an on-demand monitoring cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) monitor.CycleSummary
}

// Publisher accepts manual notifications.
type Publisher interface {
	Publish(e notify.Event) error
}

// Deps are the collaborators of the API handlers.
type Deps struct {
	Printers  PrinterStore
	Alerts    AlertLedger
	Prober    Identifier
	Details   DetailSource
	Monitor   CycleRunner
	Publisher Publisher
}

// Handler serves the REST API.
type Handler struct {
	printers  PrinterStore
	alerts    AlertLedger
	prober    Identifier
	details   DetailSource
	monitor   CycleRunner
	publisher Publisher
	logger    *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(d Deps, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		printers:  d.Printers,
		alerts:    d.Alerts,
		prober:    d.Prober,
		details:   d.Details,
		monitor:   d.Monitor,
		publisher: d.Publisher,
		logger:    logger,
	}
}

// RegisterRoutes mounts the API on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/printers", h.handleListPrinters)
	mux.HandleFunc("POST /api/v1/printers", h.handleCreatePrinter)
	mux.HandleFunc("POST /api/v1/printers/test-connection", h.handleTestConnection)
	mux.HandleFunc("GET /api/v1/printers/{id}", h.handleGetPrinter)
	mux.HandleFunc("PUT /api/v1/printers/{id}", h.handleUpdatePrinter)
	mux.HandleFunc("DELETE /api/v1/printers/{id}", h.handleDeletePrinter)
	mux.HandleFunc("GET /api/v1/printers/{id}/details", h.handlePrinterDetails)
	mux.HandleFunc("GET /api/v1/printers/{id}/alerts", h.handlePrinterAlerts)

	mux.HandleFunc("POST /api/v1/monitor/check", h.handleMonitorCheck)
	mux.HandleFunc("GET /api/v1/monitor/alerts", h.handleListAlerts)
	mux.HandleFunc("PUT /api/v1/monitor/alerts/acknowledge-all", h.handleAcknowledgeAll)
	mux.HandleFunc("PUT /api/v1/monitor/alerts/{id}/acknowledge", h.handleAcknowledge)

	mux.HandleFunc("POST /api/v1/alerts/send", h.handleSendAlert)
}

// MessageResponse is the body of action endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an RFC 7807 problem detail response.
func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":     "https://printwatch.dev/problems/" + strconv.Itoa(status),
		"title":    http.StatusText(status),
		"status":   status,
		"detail":   detail,
		"instance": r.URL.Path,
	})
}

// decodeBody decodes an optional JSON body. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseLimit(r *http.Request, defaultLimit int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultLimit
}
