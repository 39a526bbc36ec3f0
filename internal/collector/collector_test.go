package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/HerbHall/oltwatch/pkg/models"
)

type stubCollector struct{}

func (stubCollector) Fetch(context.Context, *models.Device) ([]models.OnuRecord, error) {
	return nil, nil
}

func TestRegistry_GetUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(models.BrandHioso, stubCollector{})

	if _, err := r.Get(models.BrandHioso); err != nil {
		t.Fatalf("Get(hioso): %v", err)
	}

	_, err := r.Get(models.BrandVSOL)
	var unsupported *UnsupportedBrandError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Get(vsol) err = %v, want UnsupportedBrandError", err)
	}
	if unsupported.Brand != models.BrandVSOL {
		t.Errorf("Brand = %q, want vsol", unsupported.Brand)
	}
}

func TestRegistry_CheckDevices(t *testing.T) {
	r := NewRegistry()
	r.Register(models.BrandHioso, stubCollector{})

	ok := []models.Device{
		{Name: "olt-1", Host: "10.0.0.1", Brand: models.BrandHioso},
	}
	if err := r.CheckDevices(ok); err != nil {
		t.Fatalf("CheckDevices: %v", err)
	}

	bad := append(ok, models.Device{Name: "olt-2", Host: "10.0.0.2", Brand: models.BrandVSOL})
	err := r.CheckDevices(bad)
	if err == nil {
		t.Fatal("expected error for device with unregistered brand")
	}
	var unsupported *UnsupportedBrandError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want wrapped UnsupportedBrandError", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &Error{Host: "10.0.0.1", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Error must unwrap to its cause")
	}
}
