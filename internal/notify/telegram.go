package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// SettingsSource yields the current Telegram configuration. Settings live in
// the database so the operator can change them without a restart; they are
// re-read on every send.
type SettingsSource interface {
	TelegramSettings(ctx context.Context) (*models.TelegramSettings, error)
}

// ErrDisabled is returned when Telegram alerting is switched off or not
// configured. Callers treat it like any other send failure (log and drop).
var ErrDisabled = errors.New("telegram alerting disabled")

// Telegram sends alert messages through the Telegram bot API.
type Telegram struct {
	settings SettingsSource
	client   *http.Client
	logger   *zap.Logger
	baseURL  string // overridable for tests
}

// NewTelegram creates a Telegram notifier reading its configuration from
// the given source.
func NewTelegram(settings SettingsSource, logger *zap.Logger) *Telegram {
	return &Telegram{
		settings: settings,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
		baseURL:  "https://api.telegram.org",
	}
}

// Send implements Notifier. Messages are sent with HTML parse mode, matching
// the formats produced by the sync engine.
func (t *Telegram) Send(ctx context.Context, text string) error {
	cfg, err := t.settings.TelegramSettings(ctx)
	if err != nil {
		return fmt.Errorf("load telegram settings: %w", err)
	}
	if cfg == nil || !cfg.Enabled {
		return ErrDisabled
	}
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return fmt.Errorf("%w: missing bot token or chat id", ErrDisabled)
	}

	form := url.Values{}
	form.Set("chat_id", cfg.ChatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
