// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package metrics provides Prometheus instrumentation for the ingest
// pipeline, the aggregation runs, the DuckDB layer, and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Ingest metrics
	PingsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pings_received_total",
			Help: "Total number of telemetry pings received",
		},
		[]string{"source"}, // "http", "nats", "backfill"
	)

	PingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pings_rejected_total",
			Help: "Total number of pings rejected before storage",
		},
		[]string{"reason"}, // "parse", "validation", "payload_too_large"
	)

	IngestBatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_flush_duration_seconds",
			Help:    "Duration of ingest batch flush operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_size",
			Help:    "Number of pings in each batch flush",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	IngestQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_queue_depth",
			Help: "Current number of pings buffered awaiting flush",
		},
	)

	// NATS transport metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	// Aggregation run metrics
	ChurnRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "churn_run_duration_seconds",
			Help:    "Duration of churn aggregation runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	ChurnRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "churn_runs_total",
			Help: "Total number of churn aggregation runs",
		},
		[]string{"result"}, // "success", "failure"
	)

	ChurnPingsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "churn_pings_scanned_total",
			Help: "Total number of pings scanned by aggregation runs",
		},
	)

	ChurnRowsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "churn_rows_emitted_total",
			Help: "Total number of churn summary rows written",
		},
	)

	ChurnLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "churn_last_success_timestamp",
			Help: "Unix timestamp of the last successful aggregation run",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBatchFlush records an ingest batch flush.
func RecordBatchFlush(duration time.Duration, batchSize int) {
	IngestBatchFlushDuration.Observe(duration.Seconds())
	IngestBatchSize.Observe(float64(batchSize))
}

// RecordChurnRun records an aggregation run outcome.
func RecordChurnRun(duration time.Duration, pingsScanned, rowsEmitted int, err error) {
	ChurnRunDuration.Observe(duration.Seconds())
	if err != nil {
		ChurnRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	ChurnRunsTotal.WithLabelValues("success").Inc()
	ChurnPingsScanned.Add(float64(pingsScanned))
	ChurnRowsEmitted.Add(float64(rowsEmitted))
	ChurnLastSuccess.Set(float64(time.Now().Unix()))
}
