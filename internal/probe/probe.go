// Package probe keeps reachability state fresh: it pings the OLT fleet over
// ICMP and polls uplink routers for SNMP system info on a fixed interval.
package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/module"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/pkg/models"
)

var deviceReachable = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "oltwatch_device_reachable",
	Help: "Whether the last ICMP probe of a device succeeded (1) or failed (0).",
}, []string{"device"})

// Module drives the reachability loop.
type Module struct {
	devices services.DeviceRepository
	routers *services.UplinkRouterRepository
	pinger  Pinger
	poller  *SNMPPoller
	logger  *zap.Logger

	interval time.Duration
	timeout  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewModule creates the probe module.
func NewModule(devices services.DeviceRepository, routers *services.UplinkRouterRepository) *Module {
	return &Module{
		devices: devices,
		routers: routers,
		now:     time.Now,
	}
}

func (m *Module) Name() string    { return "probe" }
func (m *Module) Version() string { return "0.1.0" }

// Init implements module.Module.
func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.logger = logger

	m.interval = config.GetDuration("interval")
	if m.interval <= 0 {
		m.interval = time.Minute
	}
	m.timeout = config.GetDuration("timeout")
	if m.timeout <= 0 {
		m.timeout = 5 * time.Second
	}

	if m.pinger == nil {
		m.pinger = NewICMPPinger(m.timeout, 2)
	}
	if m.poller == nil {
		m.poller = NewSNMPPoller(m.timeout)
	}

	logger.Info("probe module initialized",
		zap.Duration("interval", m.interval),
		zap.Duration("timeout", m.timeout),
	)
	return nil
}

// Start launches the probe loop.
func (m *Module) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.runLoop(runCtx)

	m.logger.Info("probe module started")
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (m *Module) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("probe module stopped")
	return nil
}

func (m *Module) runLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

// sweep probes every active device and every enabled router once.
func (m *Module) sweep(ctx context.Context) {
	devices, err := m.devices.ListActive(ctx)
	if err != nil {
		m.logger.Warn("failed to list devices for probing", zap.Error(err))
	} else {
		for _, d := range devices {
			m.probeDevice(ctx, &d)
		}
	}

	routers, err := m.routers.ListEnabled(ctx)
	if err != nil {
		m.logger.Warn("failed to list uplink routers", zap.Error(err))
		return
	}
	for _, r := range routers {
		m.pollRouter(ctx, &r)
	}
}

func (m *Module) probeDevice(ctx context.Context, d *models.Device) {
	up, rtt, err := m.pinger.Ping(ctx, d.Host)
	if err != nil && ctx.Err() != nil {
		return
	}

	val := 0.0
	if up {
		val = 1.0
	}
	deviceReachable.WithLabelValues(d.Name).Set(val)

	if err := m.devices.SetOnline(ctx, d.ID, up, m.now()); err != nil {
		m.logger.Warn("failed to record device reachability",
			zap.String("device", d.Name), zap.Error(err))
		return
	}

	if up != d.Online {
		m.logger.Info("device reachability changed",
			zap.String("device", d.Name),
			zap.Bool("online", up),
			zap.Duration("rtt", rtt),
		)
	}
}

func (m *Module) pollRouter(ctx context.Context, r *models.UplinkRouter) {
	info, err := m.poller.Poll(r)
	if err != nil {
		m.logger.Warn("uplink router poll failed",
			zap.String("router", r.Name), zap.Error(err))
		return
	}
	if err := m.routers.UpdateSystemInfo(ctx, r.ID,
		info.SysName, info.SysDescr, info.SysUptime, m.now()); err != nil {
		m.logger.Warn("failed to record router info",
			zap.String("router", r.Name), zap.Error(err))
	}
}

// Routes implements module.Module.
func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "/routers", Handler: m.handleListRouters},
		{Method: "POST", Path: "/routers", Handler: m.handleCreateRouter},
	}
}

// handleListRouters returns all enabled uplink routers with their last
// polled system info.
func (m *Module) handleListRouters(w http.ResponseWriter, r *http.Request) {
	routers, err := m.routers.ListEnabled(r.Context())
	if err != nil {
		m.logger.Warn("failed to list uplink routers", zap.Error(err))
		probeWriteError(w, http.StatusInternalServerError, "failed to list routers")
		return
	}
	if routers == nil {
		routers = []models.UplinkRouter{}
	}
	probeWriteJSON(w, http.StatusOK, routers)
}

// handleCreateRouter registers an uplink router for polling.
func (m *Module) handleCreateRouter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Host      string `json:"host"`
		Community string `json:"community"`
		Port      int    `json:"port"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		probeWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Host == "" {
		probeWriteError(w, http.StatusBadRequest, "name and host are required")
		return
	}

	router := &models.UplinkRouter{
		Name:      req.Name,
		Host:      req.Host,
		Community: req.Community,
		Port:      req.Port,
		Enabled:   true,
	}
	if err := m.routers.Create(r.Context(), router); err != nil {
		m.logger.Warn("failed to create uplink router", zap.Error(err))
		probeWriteError(w, http.StatusInternalServerError, "failed to create router")
		return
	}
	probeWriteJSON(w, http.StatusCreated, router)
}

func probeWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func probeWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://oltwatch.io/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
