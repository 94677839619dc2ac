// Package dispatch delivers decided alerts to the chat transport with
// bounded exponential backoff. Delivery failure is terminal for the alert
// instance but never for the poll loop: exhausted alerts are dropped,
// logged and counted.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/metrics"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/platform/retry"
	"github.com/jonboulle/clockwork"
)

const (
	maxAttempts      = 4
	initialBackoff   = 500 * time.Millisecond
	maxBackoff       = 8 * time.Second
	rateLimitBackoff = 5 * time.Second
)

type Dispatcher struct {
	transport domain.Transport
	chatID    int64
	policy    retry.Policy
	metrics   *metrics.Metrics
}

// New creates a dispatcher sending every alert to the configured admin chat.
// metrics may be nil in tests.
func New(transport domain.Transport, chatID int64, clock clockwork.Clock, m *metrics.Metrics) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		chatID:    chatID,
		metrics:   m,
	}
	d.policy = retry.Policy{
		MaxAttempts:      maxAttempts,
		InitialBackoff:   initialBackoff,
		MaxBackoff:       maxBackoff,
		RateLimitBackoff: rateLimitBackoff,
		Clock:            clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Dispatch attempt failed, backing off",
				"attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	return d
}

// Dispatch delivers one rendered alert message. It blocks only for its own
// retry schedule and holds no shared locks while waiting.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) error {
	err := retry.DoVoid(ctx, d.policy, classify, func() error {
		if d.metrics != nil {
			d.metrics.DispatchAttempts.Inc()
		}
		return d.transport.Send(ctx, d.chatID, domain.Message{Text: text})
	})
	if err != nil {
		if d.metrics != nil {
			d.metrics.DispatchFailures.Inc()
		}
		slog.Error("Dropping alert after exhausting delivery attempts", "error", err)
		return err
	}
	return nil
}

func classify(err error) retry.Action {
	kind, ok := domain.ErrorKind(err)
	if !ok {
		return retry.Retry
	}
	switch kind {
	case domain.KindUnauthorized, domain.KindNotFound:
		return retry.Stop
	case domain.KindRateLimited:
		return retry.After
	default:
		return retry.Retry
	}
}
