package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CapitolPulse/internal/domain/models"
	"CapitolPulse/internal/handler/api"
	"CapitolPulse/internal/usecase"
	pkgcache "CapitolPulse/pkg/cache"
	"CapitolPulse/pkg/config"
	xhttp "CapitolPulse/pkg/http"
	pkgkafka "CapitolPulse/pkg/kafka"
	applogger "CapitolPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the application lifecycle: query stores, the optional
// disclosure consumer, and the HTTP server.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	leaderboard *usecase.Store[*models.LeaderboardPayload]
	sectors     *usecase.Store[*models.SectorPayload]
	trades      *usecase.Store[[]models.Trade]
	snapshots   pkgcache.Service
	consumer    *pkgkafka.Consumer
	invalidator *usecase.DisclosureInvalidator
	dashboard   *api.DashboardHandler
	live        *api.LiveHandler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	leaderboard *usecase.Store[*models.LeaderboardPayload],
	sectors *usecase.Store[*models.SectorPayload],
	trades *usecase.Store[[]models.Trade],
	snapshots pkgcache.Service,
	consumer *pkgkafka.Consumer,
	invalidator *usecase.DisclosureInvalidator,
	dashboard *api.DashboardHandler,
	live *api.LiveHandler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		leaderboard: leaderboard,
		sectors:     sectors,
		trades:      trades,
		snapshots:   snapshots,
		consumer:    consumer,
		invalidator: invalidator,
		dashboard:   dashboard,
		live:        live,
	}
}

// routes fans RegisterRoutes out to every handler.
type routes []xhttp.Handler

func (r routes) RegisterRoutes(e *echo.Echo) {
	for _, h := range r {
		h.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	a.httpServer = xhttp.NewServer(routes{a.dashboard, a.live},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(a.logger),
	)

	if a.consumer != nil && a.invalidator != nil {
		a.consumer.RegisterHandler(a.invalidator)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", a.invalidator.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("dashboard api started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("aggregator", a.cfg.Aggregator.BaseURL))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.leaderboard.Close()
	a.sectors.Close()
	a.trades.Close()

	if err := a.snapshots.Close(); err != nil {
		a.logger.Warn("snapshot cache close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
