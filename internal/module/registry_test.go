package module

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// fakeModule records lifecycle calls.
type fakeModule struct {
	name    string
	initErr error
	stopped *[]string
	started bool
	routes  []Route
}

func (m *fakeModule) Name() string    { return m.name }
func (m *fakeModule) Version() string { return "0.0.1" }
func (m *fakeModule) Init(*viper.Viper, *zap.Logger) error {
	return m.initErr
}
func (m *fakeModule) Start(context.Context) error { m.started = true; return nil }
func (m *fakeModule) Stop() error {
	if m.stopped != nil {
		*m.stopped = append(*m.stopped, m.name)
	}
	return nil
}
func (m *fakeModule) Routes() []Route { return m.routes }

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	if err := r.Register(&fakeModule{name: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&fakeModule{name: "a"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRegistry_InitAllSkipsDisabled(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	a := &fakeModule{name: "a"}
	b := &fakeModule{name: "b"}
	for _, m := range []Module{a, b} {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	cfg := viper.New()
	cfg.Set("modules.b.enabled", false)

	if err := r.InitAll(cfg); err != nil {
		t.Fatalf("InitAll: %v", err)
	}

	if _, ok := r.Get("a"); !ok {
		t.Error("enabled module missing after InitAll")
	}
	if _, ok := r.Get("b"); ok {
		t.Error("disabled module still registered")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All() = %d modules, want 1", got)
	}
}

func TestRegistry_InitAllPropagatesError(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	boom := errors.New("boom")
	if err := r.Register(&fakeModule{name: "bad", initErr: boom}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.InitAll(viper.New()); !errors.Is(err, boom) {
		t.Errorf("InitAll err = %v, want boom", err)
	}
}

func TestRegistry_StopAllReverseOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	var stopped []string
	first := &fakeModule{name: "first", stopped: &stopped}
	second := &fakeModule{name: "second", stopped: &stopped}
	for _, m := range []Module{first, second} {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if err := r.InitAll(viper.New()); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if !first.started || !second.started {
		t.Fatal("modules not started")
	}

	r.StopAll()
	if len(stopped) != 2 || stopped[0] != "second" || stopped[1] != "first" {
		t.Errorf("stop order = %v, want [second first]", stopped)
	}
}

func TestRegistry_AllRoutes(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	handler := func(http.ResponseWriter, *http.Request) {}
	withRoutes := &fakeModule{name: "api", routes: []Route{
		{Method: "GET", Path: "/things", Handler: handler},
	}}
	bare := &fakeModule{name: "bare"}
	for _, m := range []Module{withRoutes, bare} {
		if err := r.Register(m); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if err := r.InitAll(viper.New()); err != nil {
		t.Fatalf("InitAll: %v", err)
	}

	routes := r.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes = %d modules, want 1", len(routes))
	}
	if len(routes["api"]) != 1 || routes["api"][0].Path != "/things" {
		t.Errorf("routes[api] = %+v", routes["api"])
	}
}
