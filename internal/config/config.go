// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	NATS     NATSConfig     `koanf:"nats"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Churn    ChurnConfig    `koanf:"churn"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout applies to request reads and response writes.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production"; production tightens
	// validation and disables permissive CORS defaults.
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" runs in-memory.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// NATSConfig holds JetStream transport settings for ping ingestion.
type NATSConfig struct {
	// Enabled turns the NATS transport on. When false the HTTP ingest
	// endpoint writes straight to the database.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server URL.
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process nats-server instead of connecting
	// to an external one.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory for the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory and MaxStore bound embedded JetStream resources in bytes.
	MaxMemory int64 `koanf:"max_memory"`
	MaxStore  int64 `koanf:"max_store"`

	// StreamRetentionDays bounds how long unconsumed pings are retained.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// SubscribersCount is the number of concurrent ping consumers.
	SubscribersCount int `koanf:"subscribers_count"`

	// DurableName and QueueGroup identify the consumer group.
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`
}

// IngestConfig holds batching and rate limiting for the ingest pipeline.
type IngestConfig struct {
	// BatchSize is the number of pings buffered before a database flush.
	BatchSize int `koanf:"batch_size"`

	// FlushInterval bounds how long a partial batch may wait.
	FlushInterval time.Duration `koanf:"flush_interval"`

	// MaxPayloadBytes caps a single ingest request body.
	MaxPayloadBytes int64 `koanf:"max_payload_bytes"`

	// RateLimitPerSecond throttles database flushes. 0 disables throttling.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`
}

// ChurnConfig holds aggregation scheduling and backfill settings.
type ChurnConfig struct {
	// AutoCompute enables the background scheduler that recomputes closed
	// weeks as their submission windows elapse.
	AutoCompute bool `koanf:"auto_compute"`

	// ComputeInterval is how often the scheduler checks for closed weeks.
	ComputeInterval time.Duration `koanf:"compute_interval"`

	// MaxBackfillWeeks bounds how many past weeks a single scheduler pass
	// will recompute.
	MaxBackfillWeeks int `koanf:"max_backfill_weeks"`

	// BackfillPath, when set, points at an NDJSON ping dump loaded at
	// startup before the first scheduled run.
	BackfillPath string `koanf:"backfill_path"`
}

// APIConfig holds pagination settings for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format: json or console.
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
