package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockCast/internal/domain/repository"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
)

// App encapsulates the serving process lifecycle: the HTTP API, and in
// kafka backend mode the consumer that drains ingested bars into the
// bar store.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	barHandler pkgkafka.MessageHandler
	barStore   repository.BarStore
	httpServer *xhttp.Server
}

// New creates an App. consumer, barHandler and barStore may be nil when
// the process serves predictions only.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	barHandler pkgkafka.MessageHandler,
	barStore repository.BarStore,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		handler:    handler,
		consumer:   consumer,
		barHandler: barHandler,
		barStore:   barStore,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.logger),
	)

	if a.consumer != nil && a.barHandler != nil {
		a.consumer.RegisterHandler(a.barHandler)
		if err := a.consumer.Start(); err != nil {
			a.logger.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.logger.Info("kafka consumer started",
			applogger.String("topic", a.barHandler.Topic()),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("serving",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.barStore != nil {
		if err := a.barStore.Close(); err != nil {
			a.logger.Warn("bar store close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
