// Package inventory manages the OLT device fleet and the alerting
// configuration over HTTP. It owns no background work; everything it does
// happens in request handlers.
package inventory

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/notify"
	"github.com/HerbHall/oltwatch/internal/services"
)

// Module exposes device and settings CRUD under /api/v1/inventory.
type Module struct {
	devices  services.DeviceRepository
	settings *services.TelegramSettingsRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewModule creates the inventory module. The notifier is used only by the
// settings test endpoint and may be notify.Nop.
func NewModule(devices services.DeviceRepository, settings *services.TelegramSettingsRepository, notifier notify.Notifier) *Module {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Module{
		devices:  devices,
		settings: settings,
		notifier: notifier,
	}
}

func (m *Module) Name() string    { return "inventory" }
func (m *Module) Version() string { return "0.1.0" }

// Init implements module.Module.
func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.logger = logger
	return nil
}

// Start implements module.Module. Inventory has no background loop.
func (m *Module) Start(ctx context.Context) error { return nil }

// Stop implements module.Module.
func (m *Module) Stop() error { return nil }
