// Package telegram adapts the chat boundary to the Telegram Bot API:
// outbound sendMessage calls and inbound webhook payload decoding. The rest
// of the codebase only sees domain.Transport and domain.Update.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

const defaultAPIBase = "https://api.telegram.org"

type Transport struct {
	token   string
	apiBase string
	httpc   *http.Client
}

func New(token string, timeout time.Duration) *Transport {
	return &Transport{
		token:   token,
		apiBase: defaultAPIBase,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// NewWithBase is used by tests to point the transport at a local server.
func NewWithBase(token, apiBase string, timeout time.Duration) *Transport {
	t := New(token, timeout)
	t.apiBase = apiBase
	return t
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ParseMode   string       `json:"parse_mode"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message. Failures surface as *domain.StoreError so the
// dispatcher's retry classification applies uniformly.
func (t *Transport) Send(ctx context.Context, chatID int64, msg domain.Message) error {
	const op = "telegram.send"

	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      msg.Text,
		ParseMode: "Markdown",
	}
	if len(msg.Keyboard) > 0 {
		markup := &replyMarkup{}
		for _, row := range msg.Keyboard {
			buttons := make([]inlineButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, inlineButton{Text: b.Label, CallbackData: b.Data})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
		}
		payload.ReplyMarkup = markup
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.StoreError{Kind: domain.KindUnreachable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}
	if decoded.OK {
		return nil
	}

	err = fmt.Errorf("telegram API: %s", decoded.Description)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.StoreError{Kind: domain.KindUnauthorized, Op: op, Err: err}
	case resp.StatusCode == http.StatusNotFound:
		return &domain.StoreError{Kind: domain.KindNotFound, Op: op, Err: err}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.StoreError{Kind: domain.KindRateLimited, Op: op, Err: err}
	case resp.StatusCode >= 500:
		return &domain.StoreError{Kind: domain.KindUnreachable, Op: op, Err: err}
	default:
		return &domain.StoreError{Kind: domain.KindMalformed, Op: op, Err: err}
	}
}
