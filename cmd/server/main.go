// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main runs the website generation service: HTTP API, generation
// orchestrator, SQLite store, and the optional deployment pipeline.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/your-org/code-weaver/internal/api"
	"github.com/your-org/code-weaver/internal/config"
	"github.com/your-org/code-weaver/internal/deploy"
	"github.com/your-org/code-weaver/internal/generator"
	"github.com/your-org/code-weaver/internal/health"
	"github.com/your-org/code-weaver/internal/images"
	"github.com/your-org/code-weaver/internal/llm"
	"github.com/your-org/code-weaver/internal/metrics"
	"github.com/your-org/code-weaver/internal/store"
)

const (
	serviceName     = "code-weaver"
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fallbackLogger, _ := zap.NewProduction()
		fallbackLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := buildLogger(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting service",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.Server.Environment),
		zap.Strings("models", cfg.Generation.Models),
		zap.Bool("deploy_enabled", cfg.Deploy.Enabled))

	st, err := store.New(cfg.Store.DBPath, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	completer, err := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Endpoint, logger,
		llm.WithTimeout(time.Duration(cfg.Generation.RequestTimeoutSeconds)*time.Second))
	if err != nil {
		logger.Fatal("Failed to initialize completion client", zap.Error(err))
	}

	healthManager := health.NewManager(serviceName, serviceVersion, logger)
	healthManager.AddChecker("store", health.DatabaseChecker("sqlite", st.Ping))

	var deployer generator.Deployer
	if cfg.Deploy.Enabled {
		client, err := deploy.NewClient(cfg.Deploy.APIToken)
		if err != nil {
			logger.Fatal("Failed to initialize deploy client", zap.Error(err))
		}
		deployer = deploy.NewAdapter(client, st, logger, cfg.Deploy.CleanupCount,
			time.Duration(cfg.Deploy.BuildTimeoutSeconds)*time.Second)
		healthManager.AddChecker("hosting", health.ExternalServiceChecker("netlify", func(ctx context.Context) error {
			_, err := client.ListSites(ctx)
			return err
		}))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.New(registry)

	orchestrator, err := generator.New(generator.Config{
		Completer: completer,
		Policy: generator.RotationPolicy{
			Models:          cfg.Generation.Models,
			RetriesPerModel: cfg.Generation.RetriesPerModel,
			MaxAttempts:     cfg.Generation.MaxAttempts,
		},
		Deployer:    deployer,
		Images:      buildImageChain(cfg.Images, logger),
		Metrics:     pipelineMetrics,
		Logger:      logger,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: float32(cfg.Generation.Temperature),
	})
	if err != nil {
		logger.Fatal("Failed to initialize orchestrator", zap.Error(err))
	}

	server := api.NewServer(api.Config{
		Store:     st,
		Generator: orchestrator,
		Completer: completer,
		Models:    cfg.Generation.Models,
		Health:    healthManager,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:    logger,
	})

	// Log config file changes; a restart picks them up.
	if err := config.WatchConfig("", func(newCfg *config.Config) {
		logger.Info("Configuration file changed, restart to apply",
			zap.Strings("models", newCfg.Generation.Models))
	}); err != nil {
		logger.Debug("Config hot-reload not active", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// buildImageChain assembles the provider chain in fixed priority order,
// skipping providers without credentials.
func buildImageChain(cfg config.ImagesConfig, logger *zap.Logger) generator.ImageSearcher {
	var providers []images.Provider
	if cfg.UnsplashAccessKey != "" {
		providers = append(providers, images.NewUnsplash(cfg.UnsplashAccessKey))
	}
	if cfg.PixabayAPIKey != "" {
		providers = append(providers, images.NewPixabay(cfg.PixabayAPIKey))
	}
	if cfg.PexelsAPIKey != "" {
		providers = append(providers, images.NewPexels(cfg.PexelsAPIKey))
	}
	if len(providers) == 0 {
		return nil
	}
	return images.NewChain(logger, providers...)
}

// buildLogger constructs a zap logger from the logging configuration.
func buildLogger(cfg config.LoggingConfig) *zap.Logger {
	level := zapcore.InfoLevel
	_ = level.Set(cfg.Level)

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
