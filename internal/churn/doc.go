// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package churn implements the churn cohort aggregation for a target week.
//
// The aggregation is a pure, single-pass transformation over an immutable
// ping collection: filter to the eligible window, derive the cohort week and
// composite channel per ping, group by the output dimension tuple, and
// reduce to distinct-profile counts and summed usage hours. It holds no
// state and touches no I/O; storage and transport live elsewhere.
//
// Two windows govern eligibility relative to the target week start:
//
//   - submission window: server-received dates within 17 days, absorbing
//     late and duplicate delivery
//   - retention window: client-observed dates within the 7 days the target
//     week covers
//
// Pings outside either window are expected noise and are dropped silently.
// The aggregation is total over schema-conforming input: absent optional
// fields coalesce to the "unknown" sentinel and never produce an error.
package churn
