package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/printwatch/internal/devices"
	"github.com/HerbHall/printwatch/internal/printer"
	"github.com/HerbHall/printwatch/internal/snmp"
	"github.com/HerbHall/printwatch/pkg/models"
)

const (
	defaultCommunity   = "public"
	defaultPrinterName = "Unknown Printer"
)

// CreatePrinterRequest is the body of POST /printers. "ip" is accepted as an
// alias of "ip_address".
type CreatePrinterRequest struct {
	Name              string `json:"name"`
	Address           string `json:"ip_address"`
	IP                string `json:"ip"`
	Community         string `json:"community"`
	Location          string `json:"location"`
	Model             string `json:"model"`
	SystemDescription string `json:"system_description"`
	Profile           string `json:"profile"`
}

func (r *CreatePrinterRequest) target() snmp.Target {
	addr := strings.TrimSpace(r.Address)
	if addr == "" {
		addr = strings.TrimSpace(r.IP)
	}
	community := r.Community
	if community == "" {
		community = defaultCommunity
	}
	return snmp.Target{Address: addr, Community: community}
}

// UpdatePrinterRequest is the body of PUT /printers/{id}. Omitted fields are
// left unchanged.
type UpdatePrinterRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"ip_address"`
	Community *string `json:"community"`
	Profile   *string `json:"profile"`
	Model     *string `json:"model"`
	Location  *string `json:"location"`
	Active    *bool   `json:"is_active"`
}

func parseProfile(s string) (models.Profile, bool) {
	switch p := models.Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case models.ProfileInkjet, models.ProfileLaser, models.ProfileUnknown:
		return p, true
	default:
		return "", false
	}
}

func targetOf(p *models.Printer) snmp.Target {
	community := p.Community
	if community == "" {
		community = defaultCommunity
	}
	return snmp.Target{Address: p.Address, Community: community}
}

func (h *Handler) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	printers, err := h.printers.List(r.Context())
	if err != nil {
		h.logger.Warn("failed to list printers", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to list printers")
		return
	}
	if printers == nil {
		printers = []models.Printer{}
	}
	writeJSON(w, http.StatusOK, printers)
}

func (h *Handler) handleGetPrinter(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPrinter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCreatePrinter registers a printer after confirming it answers SNMP.
// Identity read from the device wins over the request body.
func (h *Handler) handleCreatePrinter(w http.ResponseWriter, r *http.Request) {
	var req CreatePrinterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	target := req.target()
	if target.Address == "" {
		writeError(w, r, http.StatusBadRequest, "IP address is required")
		return
	}

	var profile models.Profile
	if req.Profile != "" {
		p, ok := parseProfile(req.Profile)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "profile must be inkjet, laser or unknown")
			return
		}
		profile = p
	}

	existing, err := h.printers.GetByAddress(r.Context(), target.Address)
	if err != nil {
		h.logger.Warn("failed to check printer address", zap.String("ip_address", target.Address), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to add printer")
		return
	}
	if existing != nil {
		writeError(w, r, http.StatusConflict, devices.ErrDuplicateAddress.Error())
		return
	}

	conn, err := h.prober.Identify(r.Context(), target)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !conn.Reachable {
		writeError(w, r, http.StatusBadRequest, conn.Message)
		return
	}

	p := &models.Printer{
		Name:      firstNonEmpty(conn.Name, req.Name, defaultPrinterName),
		Address:   target.Address,
		Community: target.Community,
		Model:     firstNonEmpty(conn.Model, req.Model, req.SystemDescription),
		Location:  req.Location,
		Status:    models.PrinterStatusOnline,
		Active:    true,
	}
	if profile == "" {
		profile = printer.DetectProfile(conn.Description, p.Model, "")
	}
	p.Profile = profile

	if err := h.printers.Create(r.Context(), p); err != nil {
		if errors.Is(err, devices.ErrDuplicateAddress) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		h.logger.Warn("failed to create printer", zap.String("ip_address", target.Address), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to add printer")
		return
	}

	h.logger.Info("printer added",
		zap.String("printer_id", p.ID),
		zap.String("ip_address", p.Address),
		zap.String("profile", string(p.Profile)),
	)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdatePrinter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdatePrinterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	u := devices.Update{
		Name:      req.Name,
		Community: req.Community,
		Model:     req.Model,
		Location:  req.Location,
		Active:    req.Active,
	}
	if req.Address != nil {
		addr := strings.TrimSpace(*req.Address)
		if addr == "" {
			writeError(w, r, http.StatusBadRequest, "IP address must not be empty")
			return
		}
		u.Address = &addr
	}
	if req.Profile != nil {
		p, ok := parseProfile(*req.Profile)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "profile must be inkjet, laser or unknown")
			return
		}
		u.Profile = &p
	}

	p, err := h.printers.Update(r.Context(), id, u)
	switch {
	case errors.Is(err, devices.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "printer not found")
		return
	case errors.Is(err, devices.ErrDuplicateAddress):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Warn("failed to update printer", zap.String("printer_id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to update printer")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePrinter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.printers.Delete(r.Context(), id)
	switch {
	case errors.Is(err, devices.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "printer not found")
		return
	case err != nil:
		h.logger.Warn("failed to delete printer", zap.String("printer_id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to delete printer")
		return
	}
	h.logger.Info("printer deleted", zap.String("printer_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleTestConnection probes an address without registering it. An
// unreachable printer is a normal result, reported with success=false.
func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req CreatePrinterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	target := req.target()

	res, err := h.prober.Identify(r.Context(), target)
	if errors.Is(err, snmp.ErrAddressRequired) {
		writeError(w, r, http.StatusBadRequest, "IP address is required")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePrinterDetails returns a live snapshot within the detail budget.
func (h *Handler) handlePrinterDetails(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPrinter(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.details.Timeout())
	defer cancel()

	snap, err := h.details.Details(ctx, targetOf(p))
	switch {
	case errors.Is(err, printer.ErrUnreachable):
		writeError(w, r, http.StatusBadGateway, "Printer is offline or unreachable")
		return
	case errors.Is(err, snmp.ErrAddressRequired):
		writeError(w, r, http.StatusBadRequest, "printer has no IP address")
		return
	case err != nil:
		h.logger.Warn("failed to get printer details", zap.String("printer_id", p.ID), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "failed to get printer details")
		return
	}
	if ctx.Err() != nil {
		writeError(w, r, http.StatusGatewayTimeout, "printer details timed out")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handlePrinterAlerts(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookupPrinter(w, r)
	if !ok {
		return
	}
	alerts, err := h.alerts.ListForDevice(r.Context(), p.ID, parseLimit(r, 50))
	if err != nil {
		h.logger.Warn("failed to list printer alerts", zap.String("printer_id", p.ID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, nonNilAlerts(alerts))
}

// lookupPrinter loads the printer named by the {id} path value, writing a
// problem response when it cannot.
func (h *Handler) lookupPrinter(w http.ResponseWriter, r *http.Request) (*models.Printer, bool) {
	id := r.PathValue("id")
	p, err := h.printers.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to get printer", zap.String("printer_id", id), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to get printer")
		return nil, false
	}
	if p == nil {
		writeError(w, r, http.StatusNotFound, "printer not found")
		return nil, false
	}
	return p, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
