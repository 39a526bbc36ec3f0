package oltsync

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Module wraps the engine with the scheduler loop and the HTTP surface for
// manual syncs.
type Module struct {
	engine  *Engine
	tracker *ProgressTracker
	logger  *zap.Logger

	interval    time.Duration
	concurrency int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewModule creates the oltsync module around an engine.
func NewModule(engine *Engine) *Module {
	return &Module{
		engine:  engine,
		tracker: NewProgressTracker(),
	}
}

func (m *Module) Name() string    { return "oltsync" }
func (m *Module) Version() string { return "0.1.0" }

// Init implements module.Module.
func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.logger = logger

	m.interval = config.GetDuration("interval")
	if m.interval <= 0 {
		m.interval = 5 * time.Minute
	}
	m.concurrency = config.GetInt("concurrency")
	if m.concurrency <= 0 {
		m.concurrency = 4
	}

	logger.Info("oltsync module initialized",
		zap.Duration("interval", m.interval),
		zap.Int("concurrency", m.concurrency),
	)
	return nil
}

// Start launches the periodic fleet sync loop.
func (m *Module) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go m.runLoop(runCtx)

	m.logger.Info("oltsync module started")
	return nil
}

// Stop cancels the scheduler and waits for an in-flight run to finish.
func (m *Module) Stop() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("oltsync module stopped")
	return nil
}

func (m *Module) runLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.engine.SyncAll(ctx, m.concurrency); err != nil {
				m.logger.Error("scheduled fleet sync failed", zap.Error(err))
			}
		}
	}
}

// StartManualSync launches an async sync of one device and tracks its
// progress for the status poller. Returns services.ErrNotFound when the
// device doesn't exist.
func (m *Module) StartManualSync(ctx context.Context, deviceID string) error {
	device, err := m.engine.Devices().Get(ctx, deviceID)
	if err != nil {
		return err
	}

	m.tracker.Set(deviceID, Progress{
		Status:  "running",
		Message: "Contacting OLT...",
		Total:   1,
	})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		// Detached from the request context: the HTTP response returns
		// immediately while the sync keeps running.
		result, err := m.engine.Sync(context.Background(), device)
		if err != nil {
			m.tracker.Set(deviceID, Progress{
				Status:  "error",
				Message: err.Error(),
				Total:   1,
			})
			return
		}
		m.tracker.Set(deviceID, Progress{
			Status:  "done",
			Message: result.Summary(),
			Current: 1,
			Total:   1,
		})
	}()

	return nil
}

// SyncProgress returns the tracked progress for a device.
func (m *Module) SyncProgress(deviceID string) Progress {
	return m.tracker.Get(deviceID)
}
