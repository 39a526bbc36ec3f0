package testutil

import (
	"github.com/google/uuid"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// NewDevice returns a Device with sensible defaults, suitable for test fixtures.
// Override individual fields after creation as needed.
func NewDevice(opts ...func(*models.Device)) models.Device {
	d := models.Device{
		ID:       uuid.New().String(),
		Name:     "test-olt",
		Brand:    models.BrandHioso,
		Host:     "192.168.1.10",
		Username: "admin",
		Password: "admin",
		PonCount: 4,
		Active:   true,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithName sets the device name.
func WithName(name string) func(*models.Device) {
	return func(d *models.Device) { d.Name = name }
}

// WithBrand sets the device brand.
func WithBrand(b models.Brand) func(*models.Device) {
	return func(d *models.Device) { d.Brand = b }
}

// WithHost sets the device host.
func WithHost(host string) func(*models.Device) {
	return func(d *models.Device) { d.Host = host }
}

// WithActive sets the device active flag.
func WithActive(active bool) func(*models.Device) {
	return func(d *models.Device) { d.Active = active }
}

// NewOnuRecord returns a fetched unit record with defaults.
func NewOnuRecord(pon, onu int, opts ...func(*models.OnuRecord)) models.OnuRecord {
	r := models.OnuRecord{
		Pon:    pon,
		OnuID:  onu,
		Serial: "HWTC0000",
		MAC:    "00:11:22:33:44:55",
		Name:   "unit",
		Status: "ONLINE",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithStatus sets the record's raw status.
func WithStatus(status string) func(*models.OnuRecord) {
	return func(r *models.OnuRecord) { r.Status = status }
}

// WithRx sets the record's receive level in dBm.
func WithRx(rx float64) func(*models.OnuRecord) {
	return func(r *models.OnuRecord) { r.RxPower = &rx }
}

// WithTx sets the record's transmit level in dBm.
func WithTx(tx float64) func(*models.OnuRecord) {
	return func(r *models.OnuRecord) { r.TxPower = &tx }
}
