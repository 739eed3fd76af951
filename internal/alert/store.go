// Package alert is the durable ledger of printer alerts.
package alert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/printwatch/internal/store"
)

// Alert kinds and severities.
const (
	KindConnection = "connection"
	SeverityHigh   = "high"
)

// ErrActiveAlertExists is returned by Create when the device already has an
// unacknowledged alert of the same kind.
var ErrActiveAlertExists = errors.New("unacknowledged alert already exists")

// Alert is one ledger record.
type Alert struct {
	ID             string     `json:"id"`
	DeviceID       string     `json:"printer_id"`
	DeviceName     string     `json:"printer_name"`
	Kind           string     `json:"alert_type"`
	Severity       string     `json:"severity"`
	Message        string     `json:"message"`
	Acknowledged   bool       `json:"is_acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Store persists alerts in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a ledger backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const alertColumns = `id, device_id, device_name, kind, severity, message,
	acknowledged, acknowledged_at, acknowledged_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*Alert, error) {
	var (
		a     Alert
		ack   int
		ackAt sql.NullTime
		ackBy sql.NullString
	)
	if err := row.Scan(
		&a.ID, &a.DeviceID, &a.DeviceName, &a.Kind, &a.Severity, &a.Message,
		&ack, &ackAt, &ackBy, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Acknowledged = ack != 0
	if ackAt.Valid {
		t := ackAt.Time
		a.AcknowledgedAt = &t
	}
	a.AcknowledgedBy = ackBy.String
	return &a, nil
}

// Create inserts a new unacknowledged alert.
func (s *Store) Create(ctx context.Context, a *Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Acknowledged = false
	a.AcknowledgedAt = nil
	a.AcknowledgedBy = ""

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO printer_alerts (id, device_id, device_name, kind, severity, message,
			acknowledged, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		a.ID, a.DeviceID, a.DeviceName, a.Kind, a.Severity, a.Message, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrActiveAlertExists
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Get returns an alert by id. Returns nil, nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*Alert, error) {
	a, err := scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM printer_alerts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// ActiveForDevice returns the unacknowledged alert of kind for a device.
// Returns nil, nil if there is none.
func (s *Store) ActiveForDevice(ctx context.Context, deviceID, kind string) (*Alert, error) {
	a, err := scanAlert(s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM printer_alerts
		WHERE device_id = ? AND kind = ? AND acknowledged = 0`, deviceID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active alert: %w", err)
	}
	return a, nil
}

// ListUnacknowledged returns open alerts, newest first.
func (s *Store) ListUnacknowledged(ctx context.Context) ([]Alert, error) {
	return s.list(ctx, `SELECT `+alertColumns+` FROM printer_alerts
		WHERE acknowledged = 0 ORDER BY created_at DESC, rowid DESC`)
}

// ListForDevice returns the most recent alerts for a device, newest first.
func (s *Store) ListForDevice(ctx context.Context, deviceID string, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(ctx, `SELECT `+alertColumns+` FROM printer_alerts
		WHERE device_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, deviceID, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Alert, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// Acknowledge marks one alert as acknowledged. It reports false if the id is
// unknown. Acknowledging an already acknowledged alert succeeds and leaves
// the original acknowledgement untouched.
func (s *Store) Acknowledge(ctx context.Context, id, by string) (bool, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE printer_alerts
		SET acknowledged = 1, acknowledged_at = ?, acknowledged_by = ?, updated_at = ?
		WHERE id = ? AND acknowledged = 0`,
		now, by, now, id,
	)
	if err != nil {
		return false, fmt.Errorf("acknowledge alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM printer_alerts WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check alert: %w", err)
	}
	return exists > 0, nil
}

// AcknowledgeAll acknowledges every open alert in one statement and returns
// how many changed.
func (s *Store) AcknowledgeAll(ctx context.Context, by string) (int64, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE printer_alerts
		SET acknowledged = 1, acknowledged_at = ?, acknowledged_by = ?, updated_at = ?
		WHERE acknowledged = 0`,
		now, by, now,
	)
	if err != nil {
		return 0, fmt.Errorf("acknowledge all alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("acknowledge all alerts: %w", err)
	}
	return n, nil
}

// DeleteAcknowledgedBefore removes acknowledged alerts older than before.
// Open alerts are never removed.
func (s *Store) DeleteAcknowledgedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM printer_alerts WHERE acknowledged = 1 AND acknowledged_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old alerts: %w", err)
	}
	return res.RowsAffected()
}
