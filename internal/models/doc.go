// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package models defines the core data types shared across the application:
// the telemetry Ping input record, the ChurnSummary output record, and the
// standardized API response envelope.
//
// Pings are immutable, externally supplied inputs. ChurnSummary rows are
// produced fresh on every aggregation run; there is no mutable state in
// these types.
package models
