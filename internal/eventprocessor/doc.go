// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

/*
Package eventprocessor implements the ping ingestion pipeline.

Pings arrive as PingEvent envelopes over NATS JetStream (via Watermill) or
directly from the HTTP ingest endpoint, and are batched into DuckDB by the
Appender. The JetStream stream retains raw events for the full submission
window so a recompute can replay late arrivals.

NATS support is build-tagged: compile with -tags=nats for the full
Watermill/JetStream transport, or without it for stubs that error at
construction. The Appender has no build tag; HTTP-only deployments use it
directly.

Flow:

	HTTP POST /api/v1/pings ─┐
	                         ├─> Appender ──batch──> DuckDB pings table
	NATS telemetry.ping.>  ──┘
*/
package eventprocessor
