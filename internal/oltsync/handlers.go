package oltsync

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/internal/module"
	"github.com/HerbHall/oltwatch/internal/services"
	"github.com/HerbHall/oltwatch/pkg/models"
)

// Routes implements module.Module.
func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "POST", Path: "/run", Handler: m.handleRunAll},
		{Method: "GET", Path: "/problems", Handler: m.handleProblems},
		{Method: "GET", Path: "/devices/{id}/onu", Handler: m.handleDeviceOnu},
		{Method: "POST", Path: "/devices/{id}/sync", Handler: m.handleSync},
		{Method: "GET", Path: "/devices/{id}/sync/status", Handler: m.handleSyncStatus},
		{Method: "POST", Path: "/devices/{id}/onu/{pon}/{onu}/toggle-alert", Handler: m.handleToggleAlert},
	}
}

// handleRunAll triggers a synchronous fleet sync and returns the report.
func (m *Module) handleRunAll(w http.ResponseWriter, r *http.Request) {
	report, err := m.engine.SyncAll(r.Context(), m.concurrency)
	if err != nil {
		m.logger.Warn("fleet sync failed", zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "fleet sync failed")
		return
	}
	syncWriteJSON(w, http.StatusOK, report)
}

// handleProblems returns units whose diagnosis is not normal.
func (m *Module) handleProblems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	units, err := m.engine.OnuStore().ListProblems(r.Context(), limit)
	if err != nil {
		m.logger.Warn("failed to list problem units", zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "failed to list problem units")
		return
	}
	syncWriteJSON(w, http.StatusOK, units)
}

// handleDeviceOnu returns every unit row for one device.
func (m *Module) handleDeviceOnu(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		syncWriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	units, err := m.engine.OnuStore().List(r.Context(), id)
	if err != nil {
		m.logger.Warn("failed to list units", zap.String("device_id", id), zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "failed to list units")
		return
	}
	syncWriteJSON(w, http.StatusOK, units)
}

// handleSync starts an async manual sync for one device.
func (m *Module) handleSync(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		syncWriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := m.StartManualSync(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			syncWriteError(w, http.StatusNotFound, "device not found")
			return
		}
		m.logger.Warn("failed to start manual sync", zap.String("device_id", id), zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "failed to start sync")
		return
	}

	syncWriteJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "sync started",
	})
}

// handleSyncStatus returns the progress of a device's manual sync.
func (m *Module) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		syncWriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	syncWriteJSON(w, http.StatusOK, m.SyncProgress(id))
}

// handleToggleAlert flips a unit's alert flag and returns the new value.
func (m *Module) handleToggleAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pon, err1 := strconv.Atoi(r.PathValue("pon"))
	onu, err2 := strconv.Atoi(r.PathValue("onu"))
	if id == "" || err1 != nil || err2 != nil {
		syncWriteError(w, http.StatusBadRequest, "invalid unit path")
		return
	}

	key := models.OnuKey{Pon: pon, OnuID: onu}
	st, err := m.engine.OnuStore().Get(r.Context(), id, key)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			syncWriteError(w, http.StatusNotFound, "unit not found")
			return
		}
		m.logger.Warn("failed to get unit", zap.String("device_id", id), zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "failed to get unit")
		return
	}

	newVal := !st.AlertEnabled
	if err := m.engine.OnuStore().SetAlertEnabled(r.Context(), id, key, newVal); err != nil {
		m.logger.Warn("failed to toggle alert flag", zap.String("device_id", id), zap.Error(err))
		syncWriteError(w, http.StatusInternalServerError, "failed to toggle alert flag")
		return
	}

	syncWriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"value":   newVal,
	})
}

// -- helpers --

func syncWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func syncWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://oltwatch.io/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
