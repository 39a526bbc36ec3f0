package oltsync

import (
	"database/sql"

	"github.com/HerbHall/oltwatch/internal/store"
)

// Migrations returns the schema migrations owned by the oltsync module.
// The module owns every table of the OLT domain: device inventory, per-unit
// status, alert configuration, and the SNMP-polled uplink routers.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create olt_devices",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE olt_devices (
						id        TEXT PRIMARY KEY,
						name      TEXT NOT NULL,
						brand     TEXT NOT NULL,
						host      TEXT NOT NULL,
						username  TEXT NOT NULL DEFAULT '',
						password  TEXT NOT NULL DEFAULT '',
						pon_count INTEGER NOT NULL DEFAULT 0,
						active    BOOLEAN NOT NULL DEFAULT 1,
						online    BOOLEAN NOT NULL DEFAULT 0,
						last_seen DATETIME
					)
				`)
				return err
			},
		},
		{
			Version:     2,
			Description: "create onu_status",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE onu_status (
						device_id     TEXT NOT NULL REFERENCES olt_devices(id) ON DELETE CASCADE,
						pon           INTEGER NOT NULL,
						onu_id        INTEGER NOT NULL,
						serial        TEXT NOT NULL DEFAULT '',
						mac           TEXT NOT NULL DEFAULT '',
						name          TEXT NOT NULL DEFAULT '',
						status        TEXT NOT NULL DEFAULT '',
						rx_power      REAL,
						tx_power      REAL,
						diagnosis     TEXT NOT NULL DEFAULT 'needs_check',
						alert_enabled BOOLEAN NOT NULL DEFAULT 0,
						last_update   DATETIME NOT NULL,
						UNIQUE (device_id, pon, onu_id)
					)
				`)
				if err != nil {
					return err
				}
				_, err = tx.Exec(`CREATE INDEX idx_onu_status_device ON onu_status(device_id)`)
				return err
			},
		},
		{
			Version:     3,
			Description: "create alert_settings",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE alert_settings (
						id        INTEGER PRIMARY KEY CHECK (id = 1),
						enabled   BOOLEAN NOT NULL DEFAULT 0,
						bot_token TEXT NOT NULL DEFAULT '',
						chat_id   TEXT NOT NULL DEFAULT ''
					)
				`)
				return err
			},
		},
		{
			Version:     4,
			Description: "create uplink_routers",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE uplink_routers (
						id         TEXT PRIMARY KEY,
						name       TEXT NOT NULL,
						host       TEXT NOT NULL,
						community  TEXT NOT NULL DEFAULT 'public',
						port       INTEGER NOT NULL DEFAULT 161,
						enabled    BOOLEAN NOT NULL DEFAULT 1,
						sys_name   TEXT NOT NULL DEFAULT '',
						sys_descr  TEXT NOT NULL DEFAULT '',
						sys_uptime INTEGER NOT NULL DEFAULT 0,
						last_seen  DATETIME
					)
				`)
				return err
			},
		},
	}
}
