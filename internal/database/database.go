// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods for
// raw pings and churn summaries.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a new database connection and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Auto-install/auto-load stays off so startup cannot hang on network
	// fetches in restricted environments; nothing here needs extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn: conn,
		cfg:  cfg,
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Database initialized")

	return db, nil
}

// configureConnectionPool tunes the sql.DB pool. DuckDB is an embedded
// database; a small pool avoids writer contention.
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(4)
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// createTables creates the pings and churn_summaries tables.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		// Raw ping store. submission_date_s3 stays in its compact YYYYMMDD
		// wire form so window prefilters are plain string comparisons.
		`CREATE TABLE IF NOT EXISTS pings (
			client_id VARCHAR NOT NULL,
			submission_date_s3 VARCHAR NOT NULL,
			subsession_start_date VARCHAR,
			subsession_length BIGINT DEFAULT 0,
			profile_creation_date BIGINT,
			channel VARCHAR,
			normalized_channel VARCHAR,
			app_version VARCHAR,
			country VARCHAR,
			locale VARCHAR,
			distribution_id VARCHAR,
			default_search_engine VARCHAR,
			attribution_source VARCHAR,
			attribution_medium VARCHAR,
			attribution_campaign VARCHAR,
			attribution_content VARCHAR,
			sync_configured BOOLEAN,
			sync_count_desktop INTEGER DEFAULT 0,
			sync_count_mobile INTEGER DEFAULT 0,
			event_timestamp BIGINT DEFAULT 0,
			total_uri_count INTEGER DEFAULT 0,
			unique_domains_count INTEGER DEFAULT 0,
			ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Aggregated output, one row per (week, cohort, dimension tuple).
		`CREATE TABLE IF NOT EXISTS churn_summaries (
			week_start VARCHAR NOT NULL,
			current_week BIGINT NOT NULL,
			channel VARCHAR NOT NULL,
			country VARCHAR NOT NULL,
			medium VARCHAR NOT NULL,
			content VARCHAR NOT NULL,
			distribution_id VARCHAR NOT NULL,
			default_search_engine VARCHAR NOT NULL,
			locale VARCHAR NOT NULL,
			n_profiles BIGINT NOT NULL,
			usage_hours DOUBLE NOT NULL,
			computed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_pings_submission ON pings (submission_date_s3)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_week ON churn_summaries (week_start)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Checkpoint forces DuckDB to flush the WAL into the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Close checkpoints and closes the database connection. The checkpoint is
// best effort; a failure is logged but does not block the close.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}

	return db.conn.Close()
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}
