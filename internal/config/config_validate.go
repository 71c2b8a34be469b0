// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateChurn(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("HTTP_TIMEOUT must be at least 1s, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled).
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if !c.NATS.EmbeddedServer {
		if c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
		}
		u, err := url.Parse(c.NATS.URL)
		if err != nil || u.Scheme != "nats" || u.Host == "" {
			return fmt.Errorf("NATS_URL must be a nats:// URL, got %q", c.NATS.URL)
		}
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when running the embedded server")
	}
	// The stream must retain pings for the full 17-day submission window or
	// late submissions are lost before a recompute can see them.
	if c.NATS.StreamRetentionDays < 17 {
		return fmt.Errorf("NATS_RETENTION_DAYS must be at least 17, got %d", c.NATS.StreamRetentionDays)
	}
	if c.NATS.SubscribersCount < 1 || c.NATS.SubscribersCount > 64 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 64, got %d", c.NATS.SubscribersCount)
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("NATS_DURABLE_NAME must not be empty")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.BatchSize < 1 || c.Ingest.BatchSize > 100000 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be between 1 and 100000, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.FlushInterval < 100*time.Millisecond {
		return fmt.Errorf("INGEST_FLUSH_INTERVAL must be at least 100ms, got %s", c.Ingest.FlushInterval)
	}
	if c.Ingest.MaxPayloadBytes < 1024 {
		return fmt.Errorf("INGEST_MAX_PAYLOAD_BYTES must be at least 1024, got %d", c.Ingest.MaxPayloadBytes)
	}
	if c.Ingest.RateLimitPerSecond < 0 {
		return fmt.Errorf("INGEST_RATE_LIMIT must not be negative, got %f", c.Ingest.RateLimitPerSecond)
	}
	return nil
}

func (c *Config) validateChurn() error {
	if !c.Churn.AutoCompute {
		return nil
	}
	if c.Churn.ComputeInterval < time.Minute {
		return fmt.Errorf("CHURN_COMPUTE_INTERVAL must be at least 1m, got %s", c.Churn.ComputeInterval)
	}
	if c.Churn.MaxBackfillWeeks < 1 || c.Churn.MaxBackfillWeeks > 520 {
		return fmt.Errorf("CHURN_MAX_BACKFILL_WEEKS must be between 1 and 520, got %d", c.Churn.MaxBackfillWeeks)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must not be below API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, disabled; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
