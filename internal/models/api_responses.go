// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Status is "success" or "error"; Error is populated only when
// Status is "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the machine-readable error payload of a failed response.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus reports service health for the /health endpoint.
type HealthStatus struct {
	Status            string     `json:"status"` // healthy, degraded
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	LastRunTime       *time.Time `json:"last_run_time,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// IngestResult reports the outcome of a batch ping ingest request.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ChurnWeekResult reports the outcome of a churn aggregation run.
type ChurnWeekResult struct {
	WeekStart   string  `json:"week_start"`
	RowsWritten int     `json:"rows_written"`
	PingsRead   int     `json:"pings_read"`
	DurationMS  int64   `json:"duration_ms"`
	UsageHours  float64 `json:"usage_hours"`
}
