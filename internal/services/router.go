package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// UplinkRouterRepository provides access to the SNMP-polled uplink routers.
type UplinkRouterRepository struct {
	db *sql.DB
}

// NewUplinkRouterRepository creates an uplink router repository.
func NewUplinkRouterRepository(db *sql.DB) *UplinkRouterRepository {
	return &UplinkRouterRepository{db: db}
}

const routerColumns = `id, name, host, community, port, enabled, sys_name, sys_descr, sys_uptime, last_seen`

// ListEnabled returns every router flagged for polling.
func (r *UplinkRouterRepository) ListEnabled(ctx context.Context) ([]models.UplinkRouter, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+routerColumns+" FROM uplink_routers WHERE enabled = 1 ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list uplink routers: %w", err)
	}
	defer rows.Close()

	var routers []models.UplinkRouter
	for rows.Next() {
		var u models.UplinkRouter
		var lastSeen sql.NullTime
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Host, &u.Community, &u.Port, &u.Enabled,
			&u.SysName, &u.SysDescr, &u.SysUptime, &lastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan uplink router: %w", err)
		}
		if lastSeen.Valid {
			u.LastSeen = lastSeen.Time
		}
		routers = append(routers, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uplink routers: %w", err)
	}
	return routers, nil
}

// Create inserts a router. If ID is empty, a UUID is generated.
func (r *UplinkRouterRepository) Create(ctx context.Context, u *models.UplinkRouter) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Port == 0 {
		u.Port = 161
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uplink_routers (id, name, host, community, port, enabled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Host, u.Community, u.Port, u.Enabled,
	)
	if err != nil {
		return fmt.Errorf("create uplink router: %w", err)
	}
	return nil
}

// UpdateSystemInfo records the result of a successful SNMP poll.
func (r *UplinkRouterRepository) UpdateSystemInfo(ctx context.Context, id, sysName, sysDescr string, sysUptime int64, seen time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE uplink_routers
		SET sys_name = ?, sys_descr = ?, sys_uptime = ?, last_seen = ?
		WHERE id = ?`,
		sysName, sysDescr, sysUptime, seen, id,
	)
	if err != nil {
		return fmt.Errorf("update uplink router: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
