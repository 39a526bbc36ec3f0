package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// TelegramSettingsRepository reads and writes the single-row Telegram alert
// configuration. It doubles as the notify.SettingsSource for the notifier.
type TelegramSettingsRepository struct {
	db *sql.DB
}

// NewTelegramSettingsRepository creates a settings repository.
func NewTelegramSettingsRepository(db *sql.DB) *TelegramSettingsRepository {
	return &TelegramSettingsRepository{db: db}
}

// TelegramSettings returns the current settings, or an all-default disabled
// configuration when none were ever saved.
func (r *TelegramSettingsRepository) TelegramSettings(ctx context.Context) (*models.TelegramSettings, error) {
	var s models.TelegramSettings
	err := r.db.QueryRowContext(ctx,
		"SELECT enabled, bot_token, chat_id FROM alert_settings WHERE id = 1",
	).Scan(&s.Enabled, &s.BotToken, &s.ChatID)
	if err == sql.ErrNoRows {
		return &models.TelegramSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load telegram settings: %w", err)
	}
	return &s, nil
}

// Save replaces the settings row.
func (r *TelegramSettingsRepository) Save(ctx context.Context, s *models.TelegramSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_settings (id, enabled, bot_token, chat_id)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			bot_token = excluded.bot_token,
			chat_id = excluded.chat_id`,
		s.Enabled, s.BotToken, s.ChatID,
	)
	if err != nil {
		return fmt.Errorf("save telegram settings: %w", err)
	}
	return nil
}
