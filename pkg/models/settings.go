package models

// TelegramSettings is the operator-managed notification configuration,
// stored as a single row so the dashboard can edit it live.
type TelegramSettings struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}
