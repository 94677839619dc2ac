// Package app runs the poll loop: observe the store, diff against the
// previous snapshot, decide alerts and deliver them. A tick never propagates
// an error; every failure is classified and folded into outage tracking.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/bot"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/detector"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/dispatch"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/metrics"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/platform/correlation"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/policy"
	"github.com/jonboulle/clockwork"
)

type Service struct {
	detector   *detector.Detector
	engine     *policy.Engine
	dispatcher *dispatch.Dispatcher
	state      domain.StateRepository
	clock      clockwork.Clock
	interval   time.Duration
	metrics    *metrics.Metrics

	prev *domain.Snapshot
}

// NewService wires the poll pipeline. The engine must be constructed from
// the persisted alert records so restarts resume edge-triggering.
func NewService(det *detector.Detector, engine *policy.Engine, disp *dispatch.Dispatcher, state domain.StateRepository, clock clockwork.Clock, interval time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		detector:   det,
		engine:     engine,
		dispatcher: disp,
		state:      state,
		clock:      clock,
		interval:   interval,
		metrics:    m,
	}
}

// Run polls until ctx is cancelled. Ticks execute sequentially on this
// goroutine, so a slow tick cannot overlap the next; a tick that outlasts
// the interval simply delays (and coalesces) the following one.
func (s *Service) Run(ctx context.Context) {
	baseline, err := s.state.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to load baseline snapshot, starting cold", "error", err)
	} else {
		s.prev = baseline
	}

	slog.Info("Poll loop started", "interval", s.interval)
	s.tick(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Poll loop stopped")
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	settings, err := s.state.Settings(ctx)
	if err != nil {
		slog.Error("Tick skipped, settings unavailable", "error", err)
		s.countTick("error")
		return
	}

	snap, err := s.detector.Observe(ctx)
	if err != nil {
		s.handleFetchFailure(ctx, err, settings)
		return
	}

	alerts := s.engine.RecordSuccess()
	if s.metrics != nil {
		s.metrics.OutageActive.Set(0)
	}

	delta := detector.Diff(s.prev, snap, settings.LowStockThreshold, settings.WatchedProductID)
	alerts = append(alerts, s.engine.Evaluate(delta, snap, settings)...)
	s.engine.PruneMissing(snap)

	// Persist before dispatching: a crash mid-delivery must not re-fire
	// already-decided alerts on restart.
	if err := s.state.SaveSnapshot(ctx, snap); err != nil {
		slog.Error("Failed to persist snapshot", "error", err)
	}
	if err := s.state.SaveAlertRecords(ctx, s.engine.Records()); err != nil {
		slog.Error("Failed to persist alert records", "error", err)
	}
	s.prev = snap

	s.deliver(ctx, alerts, settings)
	s.countTick("ok")
}

func (s *Service) handleFetchFailure(ctx context.Context, cause error, settings domain.Settings) {
	kind, ok := domain.ErrorKind(cause)
	if !ok {
		kind = domain.KindUnreachable
	}
	slog.Warn("Store observation failed", "kind", kind, "error", cause)

	alerts := s.engine.RecordFailure(kind, cause)
	for _, a := range alerts {
		if a.Kind == domain.AlertAPIOutage && s.metrics != nil {
			s.metrics.OutageActive.Set(1)
		}
	}

	if err := s.state.SaveAlertRecords(ctx, s.engine.Records()); err != nil {
		slog.Error("Failed to persist alert records", "error", err)
	}

	s.deliver(ctx, alerts, settings)
	s.countTick("fetch_failure")
}

func (s *Service) deliver(ctx context.Context, alerts []domain.Alert, settings domain.Settings) {
	for _, a := range alerts {
		if s.metrics != nil {
			s.metrics.AlertsFired.WithLabelValues(string(a.Kind)).Inc()
		}
		if err := s.dispatcher.Dispatch(ctx, bot.RenderAlert(a, settings)); err != nil {
			slog.Error("Alert delivery failed", "kind", a.Kind, "subject", a.Subject, "error", err)
		}
	}
}

func (s *Service) countTick(outcome string) {
	if s.metrics != nil {
		s.metrics.PollTicks.WithLabelValues(outcome).Inc()
	}
}
