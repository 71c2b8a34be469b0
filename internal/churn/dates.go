// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package churn

import (
	"fmt"
	"time"
)

const (
	// SubmissionWindowDays is the trailing span of server-received dates
	// accepted for a target week, accommodating late delivery. Inclusive on
	// both ends: a ping submitted exactly WeekStart+17d is still eligible.
	SubmissionWindowDays = 17

	// RetentionWindowDays is the span of client-observed dates that defines
	// the target week being summarized.
	RetentionWindowDays = 7

	// WeekStartLayout is the wire form of a target week start date.
	WeekStartLayout = "20060102"

	// ClientDateLayout is the wire form of client-observed dates.
	ClientDateLayout = "2006-01-02"
)

// secondsPerDay is used for epoch-day conversions. Telemetry dates are day
// granularity in UTC; no DST handling is needed.
const secondsPerDay = 24 * 60 * 60

// ParseWeekStart parses a "YYYYMMDD" week start into a UTC midnight time.
func ParseWeekStart(s string) (time.Time, error) {
	t, err := time.Parse(WeekStartLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week start %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatWeekStart renders a time as a "YYYYMMDD" week start string.
func FormatWeekStart(t time.Time) string {
	return t.UTC().Format(WeekStartLayout)
}

// ParseClientDate parses a client-observed "YYYY-MM-DD" date. Older clients
// append a time suffix; only the 10-byte date prefix is considered. The
// second return is false when the value is absent or malformed.
func ParseClientDate(s string) (time.Time, bool) {
	if len(s) > len(ClientDateLayout) {
		s = s[:len(ClientDateLayout)]
	}
	t, err := time.Parse(ClientDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// EpochDays returns the number of whole days between the Unix epoch and t.
func EpochDays(t time.Time) int64 {
	return floorDiv(t.Unix(), secondsPerDay)
}

// FromEpochDays returns the UTC midnight corresponding to a days-since-epoch
// count, the representation profile creation dates use on the wire.
func FromEpochDays(days int64) time.Time {
	return time.Unix(days*secondsPerDay, 0).UTC()
}

// CohortWeeks returns the integer number of whole weeks between a profile's
// creation date and the target week start. Floor division keeps the result
// well defined for profiles created after the week start (clock skew).
func CohortWeeks(weekStartDays, profileCreationDays int64) int64 {
	return floorDiv(weekStartDays-profileCreationDays, 7)
}

// floorDiv divides rounding toward negative infinity, unlike Go's
// truncating integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
