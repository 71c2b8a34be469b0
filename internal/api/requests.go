// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

// SummariesRequest carries validated query parameters for GET /churn.
type SummariesRequest struct {
	WeekStart string `validate:"omitempty,weekdate"`
	Channel   string `validate:"omitempty,max=64"`
	Country   string `validate:"omitempty,max=8"`
	Limit     int    `validate:"min=1,max=10000"`
	Offset    int    `validate:"min=0"`
}

// ComputeWeekRequest carries the validated path parameter for
// POST /churn/{week_start}/compute.
type ComputeWeekRequest struct {
	WeekStart string `validate:"required,weekdate"`
}
