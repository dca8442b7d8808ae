package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/janhq/trading-agents/internal/configs"
	"github.com/janhq/trading-agents/internal/infrastructure/logger"
	"github.com/janhq/trading-agents/internal/infrastructure/observability"
)

func main() {
	loadEnvFiles()

	cfg, err := configs.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logr, logCloser, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		File:        cfg.LogFile,
		Service:     cfg.ServiceName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("initialize logger")
	}
	defer logCloser.Close()
	log.Logger = logr

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, observability.Config{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPHeaders:  cfg.OTLPHeaders,
	}, logr)
	if err != nil {
		logr.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logr.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app, err := CreateApplication(ctx, cfg, logr)
	if err != nil {
		logr.Fatal().Err(err).Msg("create application")
	}

	if err := app.Start(ctx); err != nil {
		logr.Error().Err(err).Msg("application stopped with error")
		return
	}
	logr.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
