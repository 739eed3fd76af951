package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/alert"
	"github.com/HerbHall/printwatch/internal/monitor"
	"github.com/HerbHall/printwatch/internal/notify"
)

const defaultAcknowledger = "system"

// AcknowledgeRequest is the optional body of the acknowledge endpoints.
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

func (r AcknowledgeRequest) by() string {
	if s := strings.TrimSpace(r.AcknowledgedBy); s != "" {
		return s
	}
	return defaultAcknowledger
}

// CheckResponse is the body of POST /monitor/check.
type CheckResponse struct {
	Message string               `json:"message"`
	Summary monitor.CycleSummary `json:"summary"`
}

// AcknowledgeAllResponse reports how many alerts changed.
type AcknowledgeAllResponse struct {
	Message      string `json:"message"`
	Acknowledged int64  `json:"acknowledged"`
}

// SendAlertRequest is the body of POST /alerts/send.
type SendAlertRequest struct {
	PrinterID string `json:"printer_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

func (h *Handler) handleMonitorCheck(w http.ResponseWriter, r *http.Request) {
	summary := h.monitor.RunCycle(r.Context())
	writeJSON(w, http.StatusOK, CheckResponse{
		Message: "Printer monitoring completed",
		Summary: summary,
	})
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListUnacknowledged(r.Context())
	if err != nil {
		h.logger.Warn("failed to list alerts", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, nonNilAlerts(alerts))
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req AcknowledgeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.alerts.Acknowledge(r.Context(), id, req.by())
	if err != nil {
		h.logger.Warn("failed to acknowledge alert", zap.String("alert_id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Alert acknowledged"})
}

func (h *Handler) handleAcknowledgeAll(w http.ResponseWriter, r *http.Request) {
	var req AcknowledgeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.alerts.AcknowledgeAll(r.Context(), req.by())
	if err != nil {
		h.logger.Warn("failed to acknowledge all alerts", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to acknowledge all alerts")
		return
	}
	h.logger.Info("alerts acknowledged", zap.Int64("count", n), zap.String("by", req.by()))
	writeJSON(w, http.StatusOK, AcknowledgeAllResponse{
		Message:      "All alerts acknowledged",
		Acknowledged: n,
	})
}

// handleSendAlert relays an operator supplied notification to subscribers.
// Nothing is written to the ledger.
func (h *Handler) handleSendAlert(w http.ResponseWriter, r *http.Request) {
	var req SendAlertRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PrinterID) == "" || strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.Status) == "" {
		writeError(w, r, http.StatusBadRequest, "Missing required fields")
		return
	}

	err := h.publisher.Publish(notify.Event{
		Type:     notify.EventPrinterAlert,
		DeviceID: req.PrinterID,
		Message:  req.Message,
		Status:   req.Status,
	})
	if err != nil {
		h.logger.Warn("failed to send alert", zap.String("printer_id", req.PrinterID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Failed to send alert")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Alert sent successfully"})
}

func nonNilAlerts(alerts []alert.Alert) []alert.Alert {
	if alerts == nil {
		return []alert.Alert{}
	}
	return alerts
}
