package alert

import (
	"database/sql"

	"github.com/HerbHall/printwatch/internal/store"
)

// Migrations returns the schema for the alert ledger.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create printer_alerts table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS printer_alerts (
						id TEXT PRIMARY KEY,
						device_id TEXT NOT NULL,
						device_name TEXT NOT NULL DEFAULT '',
						kind TEXT NOT NULL,
						severity TEXT NOT NULL,
						message TEXT NOT NULL,
						acknowledged INTEGER NOT NULL DEFAULT 0,
						acknowledged_at DATETIME,
						acknowledged_by TEXT,
						created_at DATETIME NOT NULL,
						updated_at DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_printer_alerts_device ON printer_alerts(device_id, created_at)`,
					// At most one open alert per device and kind.
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_printer_alerts_open
						ON printer_alerts(device_id, kind) WHERE acknowledged = 0`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
