// Package oltsync is the reconciliation core: it fetches raw ONU state from
// vendor collectors, diagnoses it, reconciles it against the stored
// snapshot to detect transitions, and commits the result in one
// transaction with best-effort alert notification.
package oltsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/collector"
	"github.com/HerbHall/oltwatch/internal/diagnosis"
	"github.com/HerbHall/oltwatch/internal/notify"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/internal/store"
	"github.com/HerbHall/oltwatch/pkg/models"
)

// Result summarizes one device's sync cycle. Alerted and Recovered count
// notification attempts; delivery is best-effort.
type Result struct {
	DeviceID  string `json:"device_id"`
	Fetched   int    `json:"fetched"`
	Alerted   int    `json:"alerted"`
	Recovered int    `json:"recovered"`
	Removed   int    `json:"removed"`
}

// Summary renders the result as the one-line message shown in the UI.
func (r *Result) Summary() string {
	msg := fmt.Sprintf("Sync OK (%d ONT), Alert: %d, Recovery: %d",
		r.Fetched, r.Alerted, r.Recovered)
	if r.Removed > 0 {
		msg += fmt.Sprintf(", %d ONU removed", r.Removed)
	}
	return msg
}

// Engine runs the per-device reconciliation cycle. Safe to invoke
// concurrently for different devices; cycles for the same device are
// serialized by a per-device lock.
type Engine struct {
	store      *store.SQLiteStore
	onu        *OnuStore
	devices    services.DeviceRepository
	collectors *collector.Registry
	notifier   notify.Notifier
	logger     *zap.Logger
	locks      *deviceLocks
	timeout    time.Duration
	now        func() time.Time
}

// NewEngine creates a reconciliation engine. timeout bounds each collector
// fetch; a timed-out fetch is a fetch failure, never a partial result.
func NewEngine(st *store.SQLiteStore, devices services.DeviceRepository, collectors *collector.Registry, notifier notify.Notifier, timeout time.Duration, logger *zap.Logger) *Engine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		store:      st,
		onu:        NewOnuStore(st.DB()),
		devices:    devices,
		collectors: collectors,
		notifier:   notifier,
		logger:     logger,
		locks:      newDeviceLocks(),
		timeout:    timeout,
		now:        time.Now,
	}
}

// OnuStore exposes the engine's status store for the HTTP handlers.
func (e *Engine) OnuStore() *OnuStore { return e.onu }

// Devices exposes the engine's device repository.
func (e *Engine) Devices() services.DeviceRepository { return e.devices }

// Sync runs one fetch-diagnose-merge-notify-commit cycle for a device.
//
// The prior snapshot is read before the write transaction opens, so a
// rollback never loses the "what changed" view. A collector failure aborts
// the cycle before any write: a device that can't be reached keeps its
// stored rows byte-identical. Inside the transaction every fetched record
// is diagnosed and upserted, transition notifications are issued in fetch
// order, and units the device stopped reporting are deleted. Any error
// rolls the whole cycle back.
func (e *Engine) Sync(ctx context.Context, device *models.Device) (*Result, error) {
	lock := e.locks.get(device.ID)
	lock.Lock()
	defer lock.Unlock()

	col, err := e.collectors.Get(device.Brand)
	if err != nil {
		syncRunsTotal.WithLabelValues("unsupported").Inc()
		return nil, err
	}

	prior, err := e.onu.Snapshot(ctx, device.ID)
	if err != nil {
		syncRunsTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	records, err := col.Fetch(fetchCtx, device)
	cancel()
	if err != nil {
		syncRunsTotal.WithLabelValues("fetch_error").Inc()
		e.logger.Warn("collector fetch failed",
			zap.String("device", device.Name),
			zap.String("host", device.Host),
			zap.Error(err),
		)
		return nil, err
	}

	result := &Result{DeviceID: device.ID, Fetched: len(records)}

	err = e.store.Tx(ctx, func(tx *sql.Tx) error {
		fetched := make(map[models.OnuKey]bool, len(records))

		for i := range records {
			rec := &records[i]
			key := rec.Key()
			fetched[key] = true

			diag := diagnosis.Diagnose(device.Brand, rec.Status, rec.RxPower)
			prev, hasPrev := prior[key]

			if err := e.onu.UpsertTx(ctx, tx, device.ID, rec, diag, e.now().UTC()); err != nil {
				return err
			}

			e.notifyTransition(ctx, device, rec, diag, &prev, hasPrev, result)
		}

		// Units the device no longer reports are physically removed or
		// reassigned; prune them. This pass only runs after a successful
		// fetch, so a transient failure can never empty the table.
		for key := range prior {
			if fetched[key] {
				continue
			}
			if err := e.onu.DeleteTx(ctx, tx, device.ID, key); err != nil {
				return err
			}
			result.Removed++
		}

		return nil
	})
	if err != nil {
		syncRunsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("sync %s: %w", device.Name, err)
	}

	syncRunsTotal.WithLabelValues("ok").Inc()
	syncOnuFetched.Add(float64(result.Fetched))
	syncOnuRemoved.Add(float64(result.Removed))

	e.logger.Info("device sync complete",
		zap.String("device", device.Name),
		zap.Int("fetched", result.Fetched),
		zap.Int("alerted", result.Alerted),
		zap.Int("recovered", result.Recovered),
		zap.Int("removed", result.Removed),
	)
	return result, nil
}

// notifyTransition classifies the unit's transition against its prior state
// and issues at most one notification. Brand-new units never notify; a
// recovery notifies unconditionally; a problem notifies unless the unit is
// stuck in the identical diagnosis with the identical rx level (anti-spam).
// All of it is gated on the unit's user-set alert flag.
func (e *Engine) notifyTransition(ctx context.Context, device *models.Device, rec *models.OnuRecord, diag models.Diagnosis, prev *models.OnuStatus, hasPrev bool, result *Result) {
	if !hasPrev || !prev.AlertEnabled {
		return
	}

	if prev.Diagnosis.IsProblem() && diag == models.DiagnosisNormal {
		result.Recovered++
		syncRecoveriesSent.Inc()
		e.send(ctx, recoveryMessage(device, rec))
		return
	}

	if !diag.IsProblem() {
		return
	}

	// Anti-spam: an unchanged problem with an unchanged signal level was
	// already alerted on a previous cycle. Note this deliberately ignores a
	// raw status change at equal diagnosis and rx.
	if prev.Diagnosis == diag && models.FloatEqual(prev.RxPower, rec.RxPower) {
		return
	}

	result.Alerted++
	syncAlertsSent.Inc()
	e.send(ctx, problemMessage(device, rec, diag))
}

// send delivers one notification, swallowing failures. A notification
// outage must never fail the reconciliation.
func (e *Engine) send(ctx context.Context, text string) {
	err := e.notifier.Send(ctx, text)
	if err == nil {
		return
	}
	if errors.Is(err, notify.ErrDisabled) {
		e.logger.Debug("notification skipped", zap.Error(err))
		return
	}
	e.logger.Warn("notification failed", zap.Error(err))
}

func rxText(rx *float64) string {
	if rx == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f dBm", *rx)
}

func onuName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func problemMessage(device *models.Device, rec *models.OnuRecord, diag models.Diagnosis) string {
	return fmt.Sprintf(
		"\U0001F6A8 <b>ONT PROBLEM</b>\n\n"+
			"<b>OLT</b>       : %s\n"+
			"<b>PON / ONU</b> : %d / %d\n"+
			"<b>Name</b>      : %s\n"+
			"<b>Status</b>    : %s\n"+
			"<b>RX Power</b>  : %s\n"+
			"<b>Diagnosis</b> : %s",
		device.Name, rec.Pon, rec.OnuID, onuName(rec.Name),
		rec.Status, rxText(rec.RxPower), diag,
	)
}

func recoveryMessage(device *models.Device, rec *models.OnuRecord) string {
	return fmt.Sprintf(
		"✅ <b>ONT RECOVERY</b>\n\n"+
			"<b>OLT</b>       : %s\n"+
			"<b>PON / ONU</b> : %d / %d\n"+
			"<b>Name</b>      : %s\n"+
			"<b>Status</b>    : %s\n"+
			"<b>RX Power</b>  : %s\n"+
			"<b>Note</b>      : ONT back to normal",
		device.Name, rec.Pon, rec.OnuID, onuName(rec.Name),
		rec.Status, rxText(rec.RxPower),
	)
}
