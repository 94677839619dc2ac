package telegram

import (
	"encoding/json"
	"fmt"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

type webhookUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type webhookChat struct {
	ID int64 `json:"id"`
}

type webhookMessage struct {
	From *webhookUser `json:"from"`
	Chat webhookChat  `json:"chat"`
	Text string       `json:"text"`
}

type webhookCallback struct {
	From    webhookUser     `json:"from"`
	Message *webhookMessage `json:"message"`
	Data    string          `json:"data"`
}

type webhookUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *webhookMessage  `json:"message"`
	CallbackQuery *webhookCallback `json:"callback_query"`
}

// DecodeUpdate parses a webhook payload into a domain update. Payloads
// carrying neither a text message nor a callback query (edits, channel
// posts) decode to (nil, nil) and are skipped upstream.
func DecodeUpdate(raw []byte) (*domain.Update, error) {
	var wu webhookUpdate
	if err := json.Unmarshal(raw, &wu); err != nil {
		return nil, fmt.Errorf("failed to decode webhook update: %w", err)
	}

	switch {
	case wu.CallbackQuery != nil:
		upd := &domain.Update{
			Sender:   wu.CallbackQuery.From.ID,
			Name:     wu.CallbackQuery.From.FirstName,
			Callback: wu.CallbackQuery.Data,
		}
		if wu.CallbackQuery.Message != nil {
			upd.Chat = wu.CallbackQuery.Message.Chat.ID
		}
		return upd, nil

	case wu.Message != nil && wu.Message.Text != "":
		upd := &domain.Update{
			Chat: wu.Message.Chat.ID,
			Text: wu.Message.Text,
		}
		if wu.Message.From != nil {
			upd.Sender = wu.Message.From.ID
			upd.Name = wu.Message.From.FirstName
		}
		return upd, nil

	default:
		return nil, nil
	}
}
