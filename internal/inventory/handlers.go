package inventory

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

// deviceRequest is the JSON body for POST /devices and PUT /devices/{id}.
// Password is write-only; it never appears in responses.
type deviceRequest struct {
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Host     string `json:"host"`
	Username string `json:"username"`
	Password string `json:"password"`
	PonCount int    `json:"pon_count"`
	Active   *bool  `json:"active,omitempty"`
}

// telegramRequest is the JSON body for PUT /settings/telegram.
type telegramRequest struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

// Routes implements module.Module.
func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "GET", Path: "/devices", Handler: m.handleListDevices},
		{Method: "POST", Path: "/devices", Handler: m.handleCreateDevice},
		{Method: "GET", Path: "/devices/{id}", Handler: m.handleGetDevice},
		{Method: "PUT", Path: "/devices/{id}", Handler: m.handleUpdateDevice},
		{Method: "DELETE", Path: "/devices/{id}", Handler: m.handleDeleteDevice},
		{Method: "GET", Path: "/settings/telegram", Handler: m.handleGetTelegram},
		{Method: "PUT", Path: "/settings/telegram", Handler: m.handlePutTelegram},
		{Method: "POST", Path: "/settings/telegram/test", Handler: m.handleTestTelegram},
	}
}

// handleListDevices returns a filtered, paginated device list.
func (m *Module) handleListDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := services.DeviceFilter{
		Brand:      models.Brand(q.Get("brand")),
		ActiveOnly: q.Get("active") == "true",
		Search:     q.Get("search"),
	}
	opts := services.ListOptions{
		Limit:  invParseInt(q.Get("limit"), 0),
		Offset: invParseInt(q.Get("offset"), 0),
	}

	result, err := m.devices.List(r.Context(), filter, opts)
	if err != nil {
		m.logger.Warn("failed to list devices", zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	invWriteJSON(w, http.StatusOK, result)
}

// handleGetDevice returns one device by ID.
func (m *Module) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	device, err := m.devices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			invWriteError(w, http.StatusNotFound, "device not found")
			return
		}
		m.logger.Warn("failed to get device", zap.String("id", id), zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to get device")
		return
	}
	invWriteJSON(w, http.StatusOK, device)
}

// handleCreateDevice registers a new OLT.
func (m *Module) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Host == "" {
		invWriteError(w, http.StatusBadRequest, "name and host are required")
		return
	}

	brand := models.ParseBrand(req.Brand)
	if brand == models.BrandUnknown {
		invWriteError(w, http.StatusBadRequest, "brand must be hioso or vsol")
		return
	}

	device := &models.Device{
		Name:     req.Name,
		Brand:    brand,
		Host:     req.Host,
		Username: req.Username,
		Password: req.Password,
		PonCount: req.PonCount,
		Active:   true,
	}
	if req.Active != nil {
		device.Active = *req.Active
	}

	if err := m.devices.Create(r.Context(), device); err != nil {
		m.logger.Warn("failed to create device", zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to create device")
		return
	}

	m.logger.Info("device created",
		zap.String("id", device.ID),
		zap.String("name", device.Name),
		zap.String("brand", string(device.Brand)),
	)
	invWriteJSON(w, http.StatusCreated, device)
}

// handleUpdateDevice modifies an existing OLT. An empty password in the
// request keeps the stored one.
func (m *Module) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	device, err := m.devices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			invWriteError(w, http.StatusNotFound, "device not found")
			return
		}
		m.logger.Warn("failed to get device", zap.String("id", id), zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to get device")
		return
	}

	if req.Name != "" {
		device.Name = req.Name
	}
	if req.Brand != "" {
		brand := models.ParseBrand(req.Brand)
		if brand == models.BrandUnknown {
			invWriteError(w, http.StatusBadRequest, "brand must be hioso or vsol")
			return
		}
		device.Brand = brand
	}
	if req.Host != "" {
		device.Host = req.Host
	}
	if req.Username != "" {
		device.Username = req.Username
	}
	if req.Password != "" {
		device.Password = req.Password
	}
	if req.PonCount > 0 {
		device.PonCount = req.PonCount
	}
	if req.Active != nil {
		device.Active = *req.Active
	}

	if err := m.devices.Update(r.Context(), device); err != nil {
		m.logger.Warn("failed to update device", zap.String("id", id), zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to update device")
		return
	}
	invWriteJSON(w, http.StatusOK, device)
}

// handleDeleteDevice removes an OLT and its unit history.
func (m *Module) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := m.devices.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			invWriteError(w, http.StatusNotFound, "device not found")
			return
		}
		m.logger.Warn("failed to delete device", zap.String("id", id), zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to delete device")
		return
	}
	m.logger.Info("device deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleGetTelegram returns the alerting configuration. The bot token is
// masked so the UI can show whether one is set without leaking it.
func (m *Module) handleGetTelegram(w http.ResponseWriter, r *http.Request) {
	s, err := m.settings.TelegramSettings(r.Context())
	if err != nil {
		m.logger.Warn("failed to load telegram settings", zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	invWriteJSON(w, http.StatusOK, map[string]any{
		"enabled":   s.Enabled,
		"has_token": s.BotToken != "",
		"chat_id":   s.ChatID,
	})
}

// handlePutTelegram replaces the alerting configuration.
func (m *Module) handlePutTelegram(w http.ResponseWriter, r *http.Request) {
	var req telegramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Enabled && (req.BotToken == "" || req.ChatID == "") {
		invWriteError(w, http.StatusBadRequest, "bot_token and chat_id are required when enabled")
		return
	}

	s := &models.TelegramSettings{
		Enabled:  req.Enabled,
		BotToken: req.BotToken,
		ChatID:   req.ChatID,
	}
	if err := m.settings.Save(r.Context(), s); err != nil {
		m.logger.Warn("failed to save telegram settings", zap.Error(err))
		invWriteError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	m.logger.Info("telegram settings updated", zap.Bool("enabled", s.Enabled))
	invWriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleTestTelegram sends a test message through the configured notifier.
func (m *Module) handleTestTelegram(w http.ResponseWriter, r *http.Request) {
	err := m.notifier.Send(r.Context(), "<b>OLTWatch</b> test message")
	if err != nil {
		invWriteError(w, http.StatusBadGateway, "test message failed: "+err.Error())
		return
	}
	invWriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// -- helpers --

func invParseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func invWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func invWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://oltwatch.io/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
