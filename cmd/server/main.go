package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/collabkit/roomwatch/internal/api"
	"github.com/collabkit/roomwatch/internal/collab"
	"github.com/collabkit/roomwatch/internal/config"
	"github.com/collabkit/roomwatch/internal/latency"
	"github.com/collabkit/roomwatch/internal/logging"
	"github.com/collabkit/roomwatch/internal/metrics"
	"github.com/collabkit/roomwatch/internal/registry"
	"github.com/collabkit/roomwatch/internal/report"
	"github.com/collabkit/roomwatch/internal/store"
)

func main() {
	// Optional .env for local development; real deployments use env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrNoMetricsHost) {
			log.Fatal("STATSD_HOST must be set")
		}
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	if cfg.Mode == config.ModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	sink, err := metrics.NewStatsdSink(cfg.StatsdAddr(), cfg.MetricPrefix(), logger)
	if err != nil {
		logger.Fatal("failed to connect to statsd", zap.Error(err))
	}
	defer sink.Close()

	database, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	errorLog, err := store.NewErrorLog(cfg.ErrorLogPath)
	if err != nil {
		logger.Fatal("failed to open error log", zap.Error(err))
	}

	recorder := latency.NewRecorder()

	hub := collab.NewHub(logger)
	go hub.Run()

	reg := registry.New(logger, hub, database, sink, recorder, errorLog, registry.Options{
		APIKey: cfg.APIKey,
		Mode:   cfg.Mode,
	})

	reporter := report.New(logger, reg, sink, report.DefaultConfig())
	reporter.Start()
	defer reporter.Stop()

	// Fired by /done in benchmark mode and by signals in both modes.
	shutdownCh := make(chan struct{}, 1)
	requestShutdown := func() {
		select {
		case shutdownCh <- struct{}{}:
		default:
		}
	}

	server := api.New(logger, reg, hub, recorder, cfg, requestShutdown)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Router(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received signal", zap.String("signal", sig.String()))
		case <-shutdownCh:
			logger.Info("shutdown requested")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("http shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.Int("port", cfg.Port),
		zap.String("mode", string(cfg.Mode)),
		zap.String("environment", cfg.Environment),
		zap.String("db_path", cfg.DBPath))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}

	// Flush in-flight writes before exit so no accepted change is lost.
	reg.Drain()

	if cfg.Mode == config.ModeBenchmark && recorder.SampleCount() > 0 {
		if err := recorder.WriteCSV(cfg.LatencyExportPath); err != nil {
			logger.Error("latency export failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
