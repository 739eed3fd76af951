package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/printwatch/pkg/models"
)

// NewPrinter returns a Printer with sensible defaults, suitable for test fixtures.
// Override individual fields with options.
func NewPrinter(opts ...func(*models.Printer)) models.Printer {
	now := time.Now().UTC()
	p := models.Printer{
		ID:        uuid.New().String(),
		Name:      "test-printer",
		Address:   "192.168.1.50",
		Community: "public",
		Profile:   models.ProfileUnknown,
		Status:    models.PrinterStatusUnknown,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithName sets the printer name.
func WithName(name string) func(*models.Printer) {
	return func(p *models.Printer) { p.Name = name }
}

// WithAddress sets the printer address.
func WithAddress(addr string) func(*models.Printer) {
	return func(p *models.Printer) { p.Address = addr }
}

// WithStatus sets the stored status.
func WithStatus(s models.PrinterStatus) func(*models.Printer) {
	return func(p *models.Printer) { p.Status = s }
}

// WithProfile sets the printer profile.
func WithProfile(pr models.Profile) func(*models.Printer) {
	return func(p *models.Printer) { p.Profile = pr }
}

// Inactive marks the printer as excluded from polling.
func Inactive() func(*models.Printer) {
	return func(p *models.Printer) { p.Active = false }
}

// WithID sets the printer id. An empty id lets the store assign one.
func WithID(id string) func(*models.Printer) {
	return func(p *models.Printer) { p.ID = id }
}
