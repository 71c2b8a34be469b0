// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package main is the entry point for the telemetry churn service.
//
// The service ingests Firefox desktop telemetry pings over HTTP (and
// optionally NATS JetStream), stores them in DuckDB, and periodically
// aggregates them into weekly churn cohort summaries.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env)
//  2. Logging: zerolog with configured level and format
//  3. Database: DuckDB with the ping and summary schemas
//  4. NATS (optional): embedded JetStream server, publisher, consumer
//  5. Backfill (optional): NDJSON ping dump loaded at startup
//  6. Supervisor tree: ingest, ETL, and API layers under suture
//
// # Build Tags
//
//	go build ./cmd/server             # HTTP-only ingest
//	go build -tags nats ./cmd/server  # plus NATS JetStream transport
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the HTTP server drains,
// the appender flushes its queue, and the database checkpoints on close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/api"
	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/etl"
	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/supervisor"
	"github.com/acmiyaguchi/telemetry-churn/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("auto_compute", cfg.Churn.AutoCompute).
		Msg("Starting telemetry churn service")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	runner := etl.NewRunner(db, &cfg.Churn)
	appender := eventprocessor.NewAppender(db, eventprocessor.AppenderConfigFrom(&cfg.Ingest))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot backfill of a historical ping dump before serving traffic.
	if cfg.Churn.BackfillPath != "" {
		result, err := runner.LoadNDJSON(ctx, cfg.Churn.BackfillPath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Churn.BackfillPath).Msg("Backfill failed")
		}
		logging.Info().
			Int("loaded", result.Loaded).
			Int("rejected", result.Rejected).
			Str("path", cfg.Churn.BackfillPath).
			Msg("Backfill complete")
	}

	natsComponents, err := InitNATS(cfg, appender)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS")
	}
	defer func() {
		if natsComponents != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			natsComponents.Shutdown(shutdownCtx)
		}
	}()

	var publisher *eventprocessor.Publisher
	if natsComponents != nil {
		publisher = natsComponents.Publisher()
	}

	handler := api.NewHandler(db, runner, appender, publisher, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(nil))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddIngestService(appender)
	AddNATSToSupervisor(tree, natsComponents)

	if cfg.Churn.AutoCompute {
		tree.AddETLService(services.NewAggregationService(
			runner, cfg.Churn.ComputeInterval, cfg.Churn.MaxBackfillWeeks))
		logging.Info().
			Dur("interval", cfg.Churn.ComputeInterval).
			Int("max_weeks", cfg.Churn.MaxBackfillWeeks).
			Msg("Scheduled aggregation enabled")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Flush any pings still buffered in the appender.
	if err := appender.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing appender")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Service stopped gracefully")
}
