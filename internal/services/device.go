package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// DeviceFilter controls which devices are returned by List.
type DeviceFilter struct {
	Brand      models.Brand // Filter by vendor brand.
	ActiveOnly bool         // Only devices with the active flag set.
	Search     string       // Search name or host.
}

// DeviceRepository provides CRUD access to OLT devices.
type DeviceRepository interface {
	// Get returns a single device by ID.
	Get(ctx context.Context, id string) (*models.Device, error)

	// List returns a filtered, paginated list of devices.
	List(ctx context.Context, filter DeviceFilter, opts ListOptions) (*ListResult[models.Device], error)

	// ListActive returns every device with the active flag set, unpaginated.
	// This is the fleet driver's device source.
	ListActive(ctx context.Context) ([]models.Device, error)

	// Create inserts a new device. If device.ID is empty, a UUID is generated.
	Create(ctx context.Context, device *models.Device) error

	// Update modifies an existing device's mutable fields.
	Update(ctx context.Context, device *models.Device) error

	// SetOnline updates the reachability flag and, when online, last_seen.
	SetOnline(ctx context.Context, id string, online bool, seen time.Time) error

	// Delete removes a device and its ONU status rows.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ DeviceRepository = (*SQLiteDeviceRepository)(nil)

// SQLiteDeviceRepository implements DeviceRepository over the olt_devices
// table.
type SQLiteDeviceRepository struct {
	db *sql.DB
}

// NewSQLiteDeviceRepository creates a DeviceRepository. The olt_devices
// table must already exist (created by the oltsync module's migrations).
func NewSQLiteDeviceRepository(db *sql.DB) *SQLiteDeviceRepository {
	return &SQLiteDeviceRepository{db: db}
}

const deviceColumns = `id, name, brand, host, username, password, pon_count, active, online, last_seen`

func (r *SQLiteDeviceRepository) Get(ctx context.Context, id string) (*models.Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM olt_devices WHERE id = ?`, id)
	d, err := scanDevice(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get device %q: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteDeviceRepository) List(ctx context.Context, filter DeviceFilter, opts ListOptions) (*ListResult[models.Device], error) {
	opts = normalizeListOptions(opts)

	where := "1=1"
	var args []any

	if filter.Brand != "" {
		where += " AND brand = ?"
		args = append(args, string(filter.Brand))
	}
	if filter.ActiveOnly {
		where += " AND active = 1"
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR host LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM olt_devices WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count devices: %w", err)
	}

	queryArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM olt_devices WHERE "+where+
			" ORDER BY name ASC LIMIT ? OFFSET ?", queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices, err := collectDevices(rows)
	if err != nil {
		return nil, err
	}
	return &ListResult[models.Device]{Items: devices, Total: total}, nil
}

func (r *SQLiteDeviceRepository) ListActive(ctx context.Context) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM olt_devices WHERE active = 1 ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list active devices: %w", err)
	}
	defer rows.Close()
	return collectDevices(rows)
}

func (r *SQLiteDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	if device.ID == "" {
		device.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO olt_devices (id, name, brand, host, username, password, pon_count, active, online)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.Name, string(device.Brand), device.Host,
		device.Username, device.Password, device.PonCount,
		device.Active, device.Online,
	)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (r *SQLiteDeviceRepository) Update(ctx context.Context, device *models.Device) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE olt_devices SET
			name = ?, brand = ?, host = ?, username = ?, password = ?,
			pon_count = ?, active = ?
		WHERE id = ?`,
		device.Name, string(device.Brand), device.Host,
		device.Username, device.Password, device.PonCount, device.Active,
		device.ID,
	)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteDeviceRepository) SetOnline(ctx context.Context, id string, online bool, seen time.Time) error {
	var res sql.Result
	var err error
	if online {
		res, err = r.db.ExecContext(ctx,
			"UPDATE olt_devices SET online = 1, last_seen = ? WHERE id = ?", seen, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE olt_devices SET online = 0 WHERE id = ?", id)
	}
	if err != nil {
		return fmt.Errorf("set device online: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteDeviceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM olt_devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	// ONU rows cascade via the foreign key; keep behavior explicit for
	// databases restored without foreign_keys=ON.
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM onu_status WHERE device_id = ?", id); err != nil {
		return fmt.Errorf("delete device onu rows: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDevice(scan func(dest ...any) error) (*models.Device, error) {
	var d models.Device
	var brand string
	var lastSeen sql.NullTime
	err := scan(
		&d.ID, &d.Name, &brand, &d.Host, &d.Username, &d.Password,
		&d.PonCount, &d.Active, &d.Online, &lastSeen,
	)
	if err != nil {
		return nil, err
	}
	d.Brand = models.Brand(brand)
	if lastSeen.Valid {
		d.LastSeen = lastSeen.Time
	}
	return &d, nil
}

func collectDevices(rows *sql.Rows) ([]models.Device, error) {
	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	if devices == nil {
		devices = []models.Device{}
	}
	return devices, nil
}
