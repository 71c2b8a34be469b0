// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package supervisor builds the suture supervision tree for the churn
// service.
//
// The tree has three layers for failure isolation:
//
//	ingest: batch appender and NATS consumers
//	etl:    the scheduled week aggregation loop
//	api:    the HTTP server
//
// A crash in the ETL loop restarts only that layer; the API keeps serving
// already-computed summaries.
package supervisor
