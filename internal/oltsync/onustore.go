package oltsync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/pkg/models"
)

// OnuStore accesses the onu_status table. The upsert and delete paths take
// an explicit *sql.Tx because the reconciliation engine runs them inside a
// single transaction per sync cycle.
type OnuStore struct {
	db *sql.DB
}

// NewOnuStore creates an OnuStore over the shared database handle.
func NewOnuStore(db *sql.DB) *OnuStore {
	return &OnuStore{db: db}
}

const onuColumns = `device_id, pon, onu_id, serial, mac, name, status,
	rx_power, tx_power, diagnosis, alert_enabled, last_update`

// Snapshot returns every status row for a device, keyed by (pon, onu).
// Read outside the write transaction so a rollback can't lose the "before"
// view used for transition detection.
func (s *OnuStore) Snapshot(ctx context.Context, deviceID string) (map[models.OnuKey]models.OnuStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+onuColumns+" FROM onu_status WHERE device_id = ?", deviceID)
	if err != nil {
		return nil, fmt.Errorf("snapshot onu status: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[models.OnuKey]models.OnuStatus)
	for rows.Next() {
		st, err := scanOnu(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan onu status: %w", err)
		}
		snapshot[st.Key()] = *st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate onu status: %w", err)
	}
	return snapshot, nil
}

// UpsertTx inserts or updates one unit row by its natural key. All observed
// fields and the derived diagnosis are rewritten. alert_enabled is left
// untouched on update and defaults to disabled on insert; it is the one
// user-owned field a sync must never clobber.
func (s *OnuStore) UpsertTx(ctx context.Context, tx *sql.Tx, deviceID string, rec *models.OnuRecord, diag models.Diagnosis, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO onu_status (
			device_id, pon, onu_id, serial, mac, name,
			status, rx_power, tx_power, diagnosis, last_update
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id, pon, onu_id)
		DO UPDATE SET
			serial      = excluded.serial,
			mac         = excluded.mac,
			name        = excluded.name,
			status      = excluded.status,
			rx_power    = excluded.rx_power,
			tx_power    = excluded.tx_power,
			diagnosis   = excluded.diagnosis,
			last_update = excluded.last_update`,
		deviceID, rec.Pon, rec.OnuID, rec.Serial, rec.MAC, rec.Name,
		rec.Status, rec.RxPower, rec.TxPower, string(diag), now,
	)
	if err != nil {
		return fmt.Errorf("upsert onu %d/%d: %w", rec.Pon, rec.OnuID, err)
	}
	return nil
}

// DeleteTx removes one unit row within the sync transaction.
func (s *OnuStore) DeleteTx(ctx context.Context, tx *sql.Tx, deviceID string, key models.OnuKey) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM onu_status WHERE device_id = ? AND pon = ? AND onu_id = ?",
		deviceID, key.Pon, key.OnuID)
	if err != nil {
		return fmt.Errorf("delete onu %d/%d: %w", key.Pon, key.OnuID, err)
	}
	return nil
}

// Get returns one unit row, or services.ErrNotFound.
func (s *OnuStore) Get(ctx context.Context, deviceID string, key models.OnuKey) (*models.OnuStatus, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+onuColumns+" FROM onu_status WHERE device_id = ? AND pon = ? AND onu_id = ?",
		deviceID, key.Pon, key.OnuID)
	st, err := scanOnu(row.Scan)
	if err == sql.ErrNoRows {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get onu %d/%d: %w", key.Pon, key.OnuID, err)
	}
	return st, nil
}

// List returns every unit row for a device ordered by (pon, onu).
func (s *OnuStore) List(ctx context.Context, deviceID string) ([]models.OnuStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+onuColumns+" FROM onu_status WHERE device_id = ? ORDER BY pon, onu_id",
		deviceID)
	if err != nil {
		return nil, fmt.Errorf("list onu status: %w", err)
	}
	defer rows.Close()
	return collectOnu(rows)
}

// ListProblems returns every unit whose diagnosis is not normal, across all
// devices, newest first.
func (s *OnuStore) ListProblems(ctx context.Context, limit int) ([]models.OnuStatus, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+onuColumns+` FROM onu_status
		 WHERE diagnosis != ? ORDER BY last_update DESC LIMIT ?`,
		string(models.DiagnosisNormal), limit)
	if err != nil {
		return nil, fmt.Errorf("list problem onu: %w", err)
	}
	defer rows.Close()
	return collectOnu(rows)
}

// SetAlertEnabled flips the user-owned alert flag for one unit.
func (s *OnuStore) SetAlertEnabled(ctx context.Context, deviceID string, key models.OnuKey, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE onu_status SET alert_enabled = ? WHERE device_id = ? AND pon = ? AND onu_id = ?",
		enabled, deviceID, key.Pon, key.OnuID)
	if err != nil {
		return fmt.Errorf("set alert flag %d/%d: %w", key.Pon, key.OnuID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func scanOnu(scan func(dest ...any) error) (*models.OnuStatus, error) {
	var st models.OnuStatus
	var diag string
	var rx, tx sql.NullFloat64
	err := scan(
		&st.DeviceID, &st.Pon, &st.OnuID, &st.Serial, &st.MAC, &st.Name,
		&st.Status, &rx, &tx, &diag, &st.AlertEnabled, &st.LastUpdate,
	)
	if err != nil {
		return nil, err
	}
	st.Diagnosis = models.Diagnosis(diag)
	if rx.Valid {
		v := rx.Float64
		st.RxPower = &v
	}
	if tx.Valid {
		v := tx.Float64
		st.TxPower = &v
	}
	return &st, nil
}

func collectOnu(rows *sql.Rows) ([]models.OnuStatus, error) {
	var units []models.OnuStatus
	for rows.Next() {
		st, err := scanOnu(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan onu status: %w", err)
		}
		units = append(units, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate onu status: %w", err)
	}
	if units == nil {
		units = []models.OnuStatus{}
	}
	return units, nil
}
