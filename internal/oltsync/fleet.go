package oltsync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DeviceOutcome is one device's result within a fleet run.
type DeviceOutcome struct {
	DeviceID string  `json:"device_id"`
	Name     string  `json:"name"`
	OK       bool    `json:"ok"`
	Message  string  `json:"message"`
	Result   *Result `json:"result,omitempty"`
}

// RunReport aggregates a whole fleet run.
type RunReport struct {
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Devices   []DeviceOutcome `json:"devices"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// SyncAll reconciles every active device. Devices run with bounded
// concurrency; one device's failure is recorded and never aborts the
// others. Only loading the device list itself can fail.
func (e *Engine) SyncAll(ctx context.Context, concurrency int) (*RunReport, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	devices, err := e.devices.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		StartedAt: e.now().UTC(),
		Devices:   make([]DeviceOutcome, len(devices)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range devices {
		g.Go(func() error {
			device := &devices[i]
			outcome := DeviceOutcome{DeviceID: device.ID, Name: device.Name}

			result, err := e.Sync(gctx, device)
			if err != nil {
				outcome.Message = err.Error()
				e.logger.Warn("device sync failed",
					zap.String("device", device.Name),
					zap.Error(err),
				)
			} else {
				outcome.OK = true
				outcome.Message = result.Summary()
				outcome.Result = result
			}

			mu.Lock()
			report.Devices[i] = outcome
			if outcome.OK {
				report.Succeeded++
			} else {
				report.Failed++
			}
			mu.Unlock()

			// Isolation boundary: per-device errors stay in the report.
			return nil
		})
	}

	_ = g.Wait()
	report.Duration = e.now().UTC().Sub(report.StartedAt)

	e.logger.Info("fleet sync complete",
		zap.Int("devices", len(devices)),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
