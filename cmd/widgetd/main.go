package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/underdog7S/zenith-widgets/internal/api/router"
	appconfig "github.com/underdog7S/zenith-widgets/internal/config"
	"github.com/underdog7S/zenith-widgets/internal/demo"
	"github.com/underdog7S/zenith-widgets/internal/http/handlers"
	"github.com/underdog7S/zenith-widgets/internal/observability/metrics"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting widget delivery service",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	widgetMetrics := metrics.NewWidgetMetrics(nil)
	widgetHandler := handlers.NewWidgetHandler(cfg.PublicAPIBase, widgetMetrics, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Widgets:            widgetHandler,
		Demo:               demo.NewHostPageHandler(),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
