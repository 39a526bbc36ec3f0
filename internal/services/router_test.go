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

func newRouterRepo(t *testing.T) *services.UplinkRouterRepository {
	t.Helper()
	db := testutil.NewStore(t)
	if err := db.Migrate(context.Background(), "oltsync", oltsync.Migrations()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return services.NewUplinkRouterRepository(db.DB())
}

func TestUplinkRouterRepository_CreateDefaults(t *testing.T) {
	repo := newRouterRepo(t)
	ctx := context.Background()

	r := &models.UplinkRouter{Name: "core-rtr", Host: "10.0.0.254", Community: "public", Enabled: true}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" {
		t.Error("Create must assign an ID")
	}
	if r.Port != 161 {
		t.Errorf("Port = %d, want default 161", r.Port)
	}
}

func TestUplinkRouterRepository_ListEnabled(t *testing.T) {
	repo := newRouterRepo(t)
	ctx := context.Background()

	on := &models.UplinkRouter{Name: "rtr-on", Host: "10.0.0.1", Enabled: true}
	off := &models.UplinkRouter{Name: "rtr-off", Host: "10.0.0.2", Enabled: false}
	for _, r := range []*models.UplinkRouter{on, off} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create %s: %v", r.Name, err)
		}
	}

	routers, err := repo.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	if len(routers) != 1 || routers[0].Name != "rtr-on" {
		t.Errorf("ListEnabled = %+v", routers)
	}
}

func TestUplinkRouterRepository_UpdateSystemInfo(t *testing.T) {
	repo := newRouterRepo(t)
	ctx := context.Background()

	r := &models.UplinkRouter{Name: "rtr", Host: "10.0.0.1", Enabled: true}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	seen := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	if err := repo.UpdateSystemInfo(ctx, r.ID, "rb5009", "RouterOS 7.15", 8640000, seen); err != nil {
		t.Fatalf("UpdateSystemInfo: %v", err)
	}

	routers, err := repo.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	got := routers[0]
	if got.SysName != "rb5009" || got.SysDescr != "RouterOS 7.15" || got.SysUptime != 8640000 {
		t.Errorf("system info = %+v", got)
	}
	if !got.LastSeen.Equal(seen) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, seen)
	}

	if err := repo.UpdateSystemInfo(ctx, "missing", "x", "y", 0, seen); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing router: err = %v, want ErrNotFound", err)
	}
}
