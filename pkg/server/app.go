package server

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"SmartCVD/internal/service/ratelimit"
	"SmartCVD/pkg/config"
	xhttp "SmartCVD/pkg/http"
	applogger "SmartCVD/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	limiter    *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, limiter *ratelimit.Limiter) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: srv,
		limiter:    limiter,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("smartcvd started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", a.httpServer.Addr()),
		applogger.String("projection", a.cfg.Calculator.ProjectionMode),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	if a.limiter != nil && a.cfg.RateLimit.Enabled && a.cfg.RateLimit.Sweep > 0 {
		go a.sweep(ctx)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// sweep drops idle rate limiter buckets.
func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.RateLimit.Sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(a.cfg.RateLimit.Sweep); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	// Shutdown HTTP server
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flush aggregated logs before the producer closes
	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return nil
}
