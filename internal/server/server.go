// Package server exposes the HTTP surface: the Telegram webhook endpoint,
// health checks and Prometheus metrics.
package server

import (
	"context"
	"fmt"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/bot"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	echo       *echo.Echo
	router     *bot.Router
	transport  domain.Transport
	webhookKey string
	metrics    *metrics.Metrics
	port       string
}

func NewServer(router *bot.Router, transport domain.Transport, webhookKey, port string, registry *prometheus.Registry, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		router:     router,
		transport:  transport,
		webhookKey: webhookKey,
		metrics:    m,
		port:       port,
	}
	s.registerRoutes(registry)
	return s
}

func (s *Server) Start() error {
	if err := s.echo.Start(fmt.Sprintf(":%s", s.port)); err != nil {
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
