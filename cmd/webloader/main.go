package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/webloader/api"
	"github.com/use-agent/webloader/browser"
	"github.com/use-agent/webloader/cache"
	"github.com/use-agent/webloader/config"
	"github.com/use-agent/webloader/pipeline"
	"github.com/use-agent/webloader/screenshot"
	"github.com/use-agent/webloader/security"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	slog.Info("webloader starting",
		"port", cfg.APIPort,
		"browserPoolSize", cfg.BrowserPoolSize,
		"chromePath", cfg.ChromePath,
	)

	gate := security.New(cfg.MaxRequestsPerPage, cfg.MaxDomainsPerPage)
	defer gate.Close()

	respCache := cache.New(cfg.CacheTTL, 10_000)
	defer respCache.Close()

	driver := browser.NewRodDriver(cfg.ChromePath)
	pool := browser.NewPool(driver, cfg.BrowserPoolSize)
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("error closing browser pool", "error", err)
		}
	}()

	shots, err := screenshot.New(cfg.ScreenshotDir)
	if err != nil {
		slog.Error("failed to initialize screenshot store", "error", err)
		os.Exit(1)
	}
	defer shots.Close()
	shots.StartCleanupLoop(24 * time.Hour)

	pl := pipeline.New(gate, respCache, pool, shots, cfg.RequestTimeout)

	router := api.NewRouter(pl, pool, shots, cfg)

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("webloader stopped")
}

func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
