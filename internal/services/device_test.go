package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HerbHall/oltwatch/internal/oltsync"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/internal/testutil"
	"github.com/HerbHall/oltwatch/pkg/models"
)

func newDeviceRepo(t *testing.T) services.DeviceRepository {
	t.Helper()
	db := testutil.NewStore(t)
	if err := db.Migrate(context.Background(), "oltsync", oltsync.Migrations()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return services.NewSQLiteDeviceRepository(db.DB())
}

func TestSQLiteDeviceRepository_CreateAndGet(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	d := testutil.NewDevice(
		testutil.WithName("olt-core-1"),
		testutil.WithHost("10.0.0.1:8080"),
		testutil.WithBrand(models.BrandVSOL),
	)
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID == "" {
		t.Fatal("Create must assign an ID")
	}

	got, err := repo.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "olt-core-1" || got.Host != "10.0.0.1:8080" || got.Brand != models.BrandVSOL {
		t.Errorf("Get = %+v", got)
	}
	if got.Password != d.Password {
		t.Error("password not round-tripped")
	}
}

func TestSQLiteDeviceRepository_GetNotFound(t *testing.T) {
	repo := newDeviceRepo(t)
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteDeviceRepository_ListFilters(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	seed := []models.Device{
		testutil.NewDevice(testutil.WithName("alpha"), testutil.WithHost("10.0.0.1")),
		testutil.NewDevice(testutil.WithName("beta"), testutil.WithHost("10.0.0.2"), testutil.WithBrand(models.BrandVSOL)),
		testutil.NewDevice(testutil.WithName("gamma"), testutil.WithHost("10.0.0.3"), testutil.WithActive(false)),
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create %s: %v", seed[i].Name, err)
		}
	}

	all, err := repo.List(ctx, services.DeviceFilter{}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Total != 3 || len(all.Items) != 3 {
		t.Errorf("List all: total=%d items=%d, want 3/3", all.Total, len(all.Items))
	}

	vsol, err := repo.List(ctx, services.DeviceFilter{Brand: models.BrandVSOL}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List brand: %v", err)
	}
	if vsol.Total != 1 || vsol.Items[0].Name != "beta" {
		t.Errorf("List vsol = %+v", vsol)
	}

	active, err := repo.List(ctx, services.DeviceFilter{ActiveOnly: true}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if active.Total != 2 {
		t.Errorf("active total = %d, want 2", active.Total)
	}

	search, err := repo.List(ctx, services.DeviceFilter{Search: "gam"}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if search.Total != 1 || search.Items[0].Name != "gamma" {
		t.Errorf("search = %+v", search)
	}
}

func TestSQLiteDeviceRepository_ListActive(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	a := testutil.NewDevice(testutil.WithName("on"), testutil.WithHost("10.0.0.1"))
	b := testutil.NewDevice(testutil.WithName("off"), testutil.WithHost("10.0.0.2"), testutil.WithActive(false))
	for _, d := range []*models.Device{&a, &b} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].Name != "on" {
		t.Errorf("ListActive = %+v", active)
	}
}

func TestSQLiteDeviceRepository_Update(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	d := testutil.NewDevice()
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}

	d.Name = "renamed"
	d.PonCount = 8
	d.Active = false
	if err := repo.Update(ctx, &d); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "renamed" || got.PonCount != 8 || got.Active {
		t.Errorf("updated = %+v", got)
	}

	missing := testutil.NewDevice()
	if err := repo.Update(ctx, &missing); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Update missing: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteDeviceRepository_SetOnline(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	d := testutil.NewDevice()
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}

	seen := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := repo.SetOnline(ctx, d.ID, true, seen); err != nil {
		t.Fatalf("SetOnline(true): %v", err)
	}
	got, _ := repo.Get(ctx, d.ID)
	if !got.Online {
		t.Error("expected device online")
	}
	if !got.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, seen)
	}

	// Going offline keeps the last_seen watermark.
	if err := repo.SetOnline(ctx, d.ID, false, time.Now()); err != nil {
		t.Fatalf("SetOnline(false): %v", err)
	}
	got, _ = repo.Get(ctx, d.ID)
	if got.Online {
		t.Error("expected device offline")
	}
	if !got.LastSeen.Equal(seen) {
		t.Errorf("LastSeen changed on offline: %v", got.LastSeen)
	}
}

func TestSQLiteDeviceRepository_Delete(t *testing.T) {
	repo := newDeviceRepo(t)
	ctx := context.Background()

	d := testutil.NewDevice()
	if err := repo.Create(ctx, &d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, d.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := repo.Delete(ctx, d.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Delete twice: err = %v, want ErrNotFound", err)
	}
}
