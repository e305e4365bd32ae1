package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/mirador-predict/internal/api"
	"github.com/miradorstack/mirador-predict/internal/classifier"
	"github.com/miradorstack/mirador-predict/internal/config"
	"github.com/miradorstack/mirador-predict/internal/features"
	"github.com/miradorstack/mirador-predict/internal/metrics"
	"github.com/miradorstack/mirador-predict/internal/service"
	"github.com/miradorstack/mirador-predict/internal/simulator"
	"github.com/miradorstack/mirador-predict/internal/topology"
	"github.com/miradorstack/mirador-predict/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting mirador-predict", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// Model and schema load failures leave the service in degraded mode
	// (health reports it, /predict returns errors) rather than crashing:
	// an operator can still probe the process and ship the artifacts.
	var schema *features.Schema
	var riskClassifier *classifier.RiskClassifier

	loadedSchema, err := features.Load(cfg.Model.FeaturesPath)
	if err != nil {
		logger.Warn("feature schema unavailable, starting degraded",
			slog.String("path", cfg.Model.FeaturesPath), slog.Any("error", err))
	} else {
		schema = loadedSchema
	}

	model, err := classifier.LoadXGBoost(cfg.Model.Path)
	if err != nil {
		logger.Warn("model unavailable, starting degraded",
			slog.String("path", cfg.Model.Path), slog.Any("error", err))
	} else {
		riskClassifier = classifier.NewRiskClassifier(model)
		logger.Info("model loaded", slog.String("path", cfg.Model.Path), slog.String("version", cfg.Model.Version))
	}

	predictionService := service.New(logger, schema, riskClassifier, cfg.Model.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sim *simulator.Simulator
	var hub *simulator.Hub
	if cfg.Simulator.Enabled {
		sim = simulator.New(logger, topology.Default(), time.Now().UnixNano())
		hub = simulator.NewHub(logger)
		sim.OnChange(hub.Broadcast)
		go sim.Run(ctx, cfg.Simulator.TickInterval)
		logger.Info("simulator running", slog.Duration("tick", cfg.Simulator.TickInterval))
	}

	handler := api.NewHandler(logger, predictionService, sim, hub)
	server := api.NewServer(cfg.Server, handler)

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}

	if hub != nil {
		hub.Close()
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("mirador-predict stopped")
}
