// Package collector fetches raw ONU state from vendor OLT devices. Each
// brand gets one Collector implementation; the Registry dispatches by brand
// and is validated against configured devices at startup.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// Collector fetches the current set of ONU records from one device. The
// returned slice preserves device report order. Implementations must honor
// ctx cancellation and complete or fail within a bounded time.
type Collector interface {
	Fetch(ctx context.Context, device *models.Device) ([]models.OnuRecord, error)
}

// Error wraps a transport or parse failure talking to a device. A sync
// cycle that sees one aborts with no writes.
type Error struct {
	Host string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("collector %s: %v", e.Host, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UnsupportedBrandError is returned when a device references a brand with no
// registered collector. The device is skipped; the fleet run continues.
type UnsupportedBrandError struct {
	Brand models.Brand
}

func (e *UnsupportedBrandError) Error() string {
	return fmt.Sprintf("unsupported OLT brand %q", e.Brand)
}

// Registry maps brands to their collectors.
type Registry struct {
	mu         sync.RWMutex
	collectors map[models.Brand]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[models.Brand]Collector)}
}

// DefaultRegistry returns a registry with all built-in vendor collectors.
func DefaultRegistry(timeout time.Duration, logger *zap.Logger) *Registry {
	r := NewRegistry()
	r.Register(models.BrandHioso, NewHioso(timeout, logger))
	r.Register(models.BrandVSOL, NewVSOL(timeout, logger))
	return r
}

// Register adds or replaces the collector for a brand.
func (r *Registry) Register(brand models.Brand, c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[brand] = c
}

// Get returns the collector for a brand, or an UnsupportedBrandError.
func (r *Registry) Get(brand models.Brand) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[brand]
	if !ok {
		return nil, &UnsupportedBrandError{Brand: brand}
	}
	return c, nil
}

// CheckDevices verifies every device's brand has a registered collector.
// Run at startup so misconfiguration surfaces before the first sync.
func (r *Registry) CheckDevices(devices []models.Device) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range devices {
		if _, ok := r.collectors[devices[i].Brand]; !ok {
			return fmt.Errorf("device %s (%s): %w", devices[i].Name, devices[i].Host,
				&UnsupportedBrandError{Brand: devices[i].Brand})
		}
	}
	return nil
}
