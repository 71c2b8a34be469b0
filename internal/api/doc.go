// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package api provides the HTTP surface of the churn service using the Chi
// router.
//
// Endpoints:
//
//	GET  /api/v1/health                      service health summary
//	GET  /api/v1/health/live                 liveness probe
//	GET  /api/v1/health/ready                readiness probe
//	POST /api/v1/pings                       ingest a batch of telemetry pings
//	GET  /api/v1/churn                       query churn summary rows
//	GET  /api/v1/churn/weeks                 list computed weeks
//	POST /api/v1/churn/{week_start}/compute  recompute one week
//	GET  /metrics                            Prometheus metrics
//
// All JSON endpoints respond with the models.APIResponse envelope.
package api
