// Package devices is the printer registry.
package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/printwatch/internal/store"
	"github.com/HerbHall/printwatch/pkg/models"
)

var (
	// ErrNotFound is returned by mutations on an unknown printer id.
	ErrNotFound = errors.New("printer not found")
	// ErrDuplicateAddress is returned when another printer already uses the address.
	ErrDuplicateAddress = errors.New("printer with this IP address already exists")
)

// Update carries the fields of a partial update. Nil fields are unchanged.
type Update struct {
	Name      *string
	Address   *string
	Community *string
	Profile   *models.Profile
	Model     *string
	Location  *string
	Active    *bool
}

// Store persists printers in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a registry backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const printerColumns = `id, name, ip_address, community, profile, model, location,
	status, is_active, last_polled_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPrinter(row scanner) (*models.Printer, error) {
	var (
		p          models.Printer
		profile    string
		status     string
		active     int
		lastPolled sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Address, &p.Community, &profile, &p.Model, &p.Location,
		&status, &active, &lastPolled, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Profile = models.Profile(profile)
	p.Status = models.PrinterStatus(status)
	p.Active = active != 0
	if lastPolled.Valid {
		t := lastPolled.Time
		p.LastPolledAt = &t
	}
	return &p, nil
}

// Create registers a printer. ID, timestamps and defaults are filled in.
func (s *Store) Create(ctx context.Context, p *models.Printer) error {
	p.Address = strings.TrimSpace(p.Address)
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Community == "" {
		p.Community = "public"
	}
	if p.Profile == "" {
		p.Profile = models.ProfileUnknown
	}
	if p.Status == "" {
		p.Status = models.PrinterStatusUnknown
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO printers (`+printerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Address, p.Community, string(p.Profile), p.Model, p.Location,
		string(p.Status), boolInt(p.Active), p.LastPolledAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrDuplicateAddress
		}
		return fmt.Errorf("insert printer: %w", err)
	}
	return nil
}

// Get returns a printer by id. Returns nil, nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*models.Printer, error) {
	p, err := scanPrinter(s.db.QueryRowContext(ctx,
		`SELECT `+printerColumns+` FROM printers WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get printer: %w", err)
	}
	return p, nil
}

// GetByAddress returns the printer registered at address. Returns nil, nil
// if none.
func (s *Store) GetByAddress(ctx context.Context, address string) (*models.Printer, error) {
	p, err := scanPrinter(s.db.QueryRowContext(ctx,
		`SELECT `+printerColumns+` FROM printers WHERE ip_address = ?`, strings.TrimSpace(address)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get printer by address: %w", err)
	}
	return p, nil
}

// List returns all printers in registry (creation) order.
func (s *Store) List(ctx context.Context) ([]models.Printer, error) {
	return s.list(ctx, `SELECT `+printerColumns+` FROM printers ORDER BY rowid`)
}

// ListActive returns the printers included in polling, in registry order.
func (s *Store) ListActive(ctx context.Context) ([]models.Printer, error) {
	return s.list(ctx, `SELECT `+printerColumns+` FROM printers WHERE is_active = 1 ORDER BY rowid`)
}

func (s *Store) list(ctx context.Context, query string) ([]models.Printer, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list printers: %w", err)
	}
	defer rows.Close()

	printers := make([]models.Printer, 0)
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan printer row: %w", err)
		}
		printers = append(printers, *p)
	}
	return printers, rows.Err()
}

// Update applies a partial update and returns the stored result.
func (s *Store) Update(ctx context.Context, id string, u Update) (*models.Printer, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Address != nil {
		add("ip_address", strings.TrimSpace(*u.Address))
	}
	if u.Community != nil {
		add("community", *u.Community)
	}
	if u.Profile != nil {
		add("profile", string(*u.Profile))
	}
	if u.Model != nil {
		add("model", *u.Model)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Active != nil {
		add("is_active", boolInt(*u.Active))
	}
	add("updated_at", s.now())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE printers SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateAddress
		}
		return nil, fmt.Errorf("update printer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// UpdateStatus records the outcome of a poll. A single statement, so the
// status and timestamp always change together.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.PrinterStatus, polledAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE printers SET status = ?, last_polled_at = ?, updated_at = ? WHERE id = ?`,
		string(status), polledAt.UTC(), s.now(), id,
	)
	if err != nil {
		return fmt.Errorf("update printer status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a printer.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM printers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete printer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
