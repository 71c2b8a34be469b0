// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

/*
Package config provides centralized configuration management.

Configuration is layered with Koanf v2, lowest precedence first:

 1. Built-in defaults
 2. Optional YAML config file (CONFIG_PATH or the default search paths)
 3. Environment variables

# Configuration Structure

  - ServerConfig: HTTP server settings (host, port, timeouts)
  - DatabaseConfig: DuckDB path and performance tuning
  - NATSConfig: JetStream transport for ping ingestion
  - IngestConfig: batching and rate limiting for the ingest pipeline
  - ChurnConfig: aggregation scheduling and backfill
  - APIConfig: pagination limits
  - LoggingConfig: log level and format

# Environment Variables

Common variables (see envTransformFunc for the full mapping):

  - HTTP_HOST / HTTP_PORT: bind address (default 0.0.0.0:8317)
  - DUCKDB_PATH: database file path (default /data/churn.duckdb)
  - NATS_ENABLED / NATS_URL / NATS_EMBEDDED: transport settings
  - CHURN_AUTO_COMPUTE / CHURN_COMPUTE_INTERVAL: scheduler settings
  - LOG_LEVEL / LOG_FORMAT: logging settings

# Thread Safety

The Config struct is immutable after Load() returns and safe for concurrent
reads without synchronization.
*/
package config
