// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package database

import (
	"context"
	"testing"

	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

func testSummary(weekStart string, currentWeek int64, channel string, nProfiles int64) models.ChurnSummary {
	return models.ChurnSummary{
		WeekStart:           weekStart,
		CurrentWeek:         currentWeek,
		Channel:             channel,
		Country:             "US",
		Medium:              "unknown",
		Content:             "unknown",
		DistributionID:      "unknown",
		DefaultSearchEngine: "google",
		Locale:              "en-US",
		NProfiles:           nProfiles,
		UsageHours:          2.5,
	}
}

func TestReplaceWeekSummariesIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []models.ChurnSummary{
		testSummary("20170115", 0, "release", 10),
		testSummary("20170115", 1, "beta", 4),
	}

	for i := 0; i < 2; i++ {
		if err := db.ReplaceWeekSummaries(ctx, "20170115", rows); err != nil {
			t.Fatalf("ReplaceWeekSummaries() run %d error = %v", i, err)
		}
	}

	got, err := db.Summaries(ctx, SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d rows after rerun, want 2", len(got))
	}
}

func TestReplaceWeekSummariesShrinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceWeekSummaries(ctx, "20170115", []models.ChurnSummary{
		testSummary("20170115", 0, "release", 10),
		testSummary("20170115", 1, "beta", 4),
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// Recompute produced fewer groups; the stale row must go away.
	if err := db.ReplaceWeekSummaries(ctx, "20170115", []models.ChurnSummary{
		testSummary("20170115", 0, "release", 12),
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := db.Summaries(ctx, SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].NProfiles != 12 {
		t.Errorf("n_profiles = %d, want 12", got[0].NProfiles)
	}
}

func TestReplaceWeekSummariesEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceWeekSummaries(ctx, "20170115", []models.ChurnSummary{
		testSummary("20170115", 0, "release", 10),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.ReplaceWeekSummaries(ctx, "20170115", nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}

	got, err := db.Summaries(ctx, SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0 after empty replace", len(got))
	}
}

func TestSummariesFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceWeekSummaries(ctx, "20170115", []models.ChurnSummary{
		testSummary("20170115", 0, "release", 10),
		testSummary("20170115", 1, "release", 5),
		testSummary("20170115", 0, "beta", 2),
	}); err != nil {
		t.Fatalf("replace week 1: %v", err)
	}
	if err := db.ReplaceWeekSummaries(ctx, "20170122", []models.ChurnSummary{
		testSummary("20170122", 0, "release", 8),
	}); err != nil {
		t.Fatalf("replace week 2: %v", err)
	}

	release, err := db.Summaries(ctx, SummaryFilter{Channel: "release"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(release) != 3 {
		t.Errorf("channel filter: got %d rows, want 3", len(release))
	}

	page, err := db.Summaries(ctx, SummaryFilter{WeekStart: "20170115", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Summaries() paginated error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("pagination: got %d rows, want 2", len(page))
	}

	// Stable ordering: beta sorts before release within cohort 0.
	all, err := db.Summaries(ctx, SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if all[0].Channel != "beta" || all[0].CurrentWeek != 0 {
		t.Errorf("first row = %q week %d, want beta cohort 0", all[0].Channel, all[0].CurrentWeek)
	}
}

func TestComputedWeeks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, week := range []string{"20170101", "20170115", "20170108"} {
		if err := db.ReplaceWeekSummaries(ctx, week, []models.ChurnSummary{
			testSummary(week, 0, "release", 1),
		}); err != nil {
			t.Fatalf("replace %s: %v", week, err)
		}
	}

	weeks, err := db.ComputedWeeks(ctx)
	if err != nil {
		t.Fatalf("ComputedWeeks() error = %v", err)
	}
	want := []string{"20170115", "20170108", "20170101"}
	if len(weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(weeks), len(want))
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Errorf("weeks[%d] = %q, want %q", i, weeks[i], want[i])
		}
	}
}
