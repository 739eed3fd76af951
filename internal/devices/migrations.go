package devices

import (
	"database/sql"

	"github.com/HerbHall/printwatch/internal/store"
)

// Migrations returns the schema for the printer registry.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create printers table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS printers (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL,
						ip_address TEXT NOT NULL UNIQUE,
						community TEXT NOT NULL DEFAULT 'public',
						profile TEXT NOT NULL DEFAULT 'unknown',
						model TEXT NOT NULL DEFAULT '',
						location TEXT NOT NULL DEFAULT '',
						status TEXT NOT NULL DEFAULT 'unknown',
						is_active INTEGER NOT NULL DEFAULT 1,
						last_polled_at DATETIME,
						created_at DATETIME NOT NULL,
						updated_at DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_printers_active ON printers(is_active)`,
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
