package server

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/platform/correlation"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/telegram"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook receives Telegram updates. It always answers 200 once the
// token checks out, because Telegram retries non-2xx responses and a
// poisoned update would otherwise be redelivered forever.
func (s *Server) handleWebhook(c echo.Context) error {
	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(s.webhookKey)) != 1 {
		return c.NoContent(http.StatusNotFound)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusOK)
	}

	ctx := correlation.WithID(c.Request().Context(), correlation.NewID())

	upd, err := telegram.DecodeUpdate(body)
	if err != nil {
		slog.Warn("Discarding undecodable webhook payload", "error", err)
		s.countUpdate("malformed")
		return c.NoContent(http.StatusOK)
	}
	if upd == nil {
		s.countUpdate("ignored")
		return c.NoContent(http.StatusOK)
	}

	if upd.Callback != "" {
		s.countUpdate("callback")
	} else {
		s.countUpdate("message")
	}

	reply, err := s.router.HandleUpdate(ctx, *upd)
	if err != nil {
		slog.Error("Update handling failed", "sender", upd.Sender, "error", err)
		return c.NoContent(http.StatusOK)
	}
	if reply != nil {
		if err := s.transport.Send(ctx, upd.Chat, *reply); err != nil {
			slog.Error("Failed to send reply", "chat", upd.Chat, "error", err)
		}
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) countUpdate(kind string) {
	if s.metrics != nil {
		s.metrics.UpdatesReceived.WithLabelValues(kind).Inc()
	}
}
