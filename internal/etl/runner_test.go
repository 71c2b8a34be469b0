// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package etl

import (
	"context"
	"testing"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

func newTestRunner(t *testing.T) (*Runner, *database.DB) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.ChurnConfig{
		AutoCompute:      true,
		ComputeInterval:  time.Hour,
		MaxBackfillWeeks: 4,
	}
	return NewRunner(db, cfg), db
}

func i64(v int64) *int64 { return &v }

func weekPing(clientID string, seconds int64) models.Ping {
	return models.Ping{
		ClientID:            clientID,
		SubmissionDateS3:    "20170115",
		SubsessionStartDate: "2017-01-15",
		SubsessionLength:    seconds,
		ProfileCreationDate: i64(17181),
		NormalizedChannel:   "release",
		Country:             "US",
		Locale:              "en-US",
		DefaultSearchEngine: "google",
	}
}

func TestRunWeek(t *testing.T) {
	runner, db := newTestRunner(t)
	ctx := context.Background()

	pings := []models.Ping{
		weekPing("a", 3600),
		weekPing("b", 7200),
	}
	// Outside the submission window; must not influence the run.
	late := weekPing("c", 3600)
	late.SubmissionDateS3 = "20170301"
	pings = append(pings, late)

	if _, err := db.InsertPings(ctx, pings); err != nil {
		t.Fatalf("InsertPings() error = %v", err)
	}

	result, err := runner.RunWeek(ctx, "20170115")
	if err != nil {
		t.Fatalf("RunWeek() error = %v", err)
	}
	if result.PingsRead != 2 {
		t.Errorf("pings read = %d, want 2", result.PingsRead)
	}
	if result.RowsWritten != 1 {
		t.Errorf("rows written = %d, want 1", result.RowsWritten)
	}
	if result.UsageHours != 3.0 {
		t.Errorf("usage hours = %f, want 3.0", result.UsageHours)
	}

	stored, err := db.Summaries(ctx, database.SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d rows, want 1", len(stored))
	}
	if stored[0].NProfiles != 2 {
		t.Errorf("n_profiles = %d, want 2", stored[0].NProfiles)
	}

	if runner.LastRunTime() == nil {
		t.Error("last run time not recorded")
	}
}

func TestRunWeekIdempotent(t *testing.T) {
	runner, db := newTestRunner(t)
	ctx := context.Background()

	if _, err := db.InsertPings(ctx, []models.Ping{weekPing("a", 3600)}); err != nil {
		t.Fatalf("InsertPings() error = %v", err)
	}

	first, err := runner.RunWeek(ctx, "20170115")
	if err != nil {
		t.Fatalf("first RunWeek() error = %v", err)
	}
	second, err := runner.RunWeek(ctx, "20170115")
	if err != nil {
		t.Fatalf("second RunWeek() error = %v", err)
	}
	if first.RowsWritten != second.RowsWritten || first.UsageHours != second.UsageHours {
		t.Errorf("reruns diverged: %+v vs %+v", first, second)
	}

	stored, err := db.Summaries(ctx, database.SummaryFilter{WeekStart: "20170115"})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored %d rows after rerun, want 1", len(stored))
	}
}

func TestRunWeekEmptyStore(t *testing.T) {
	runner, _ := newTestRunner(t)

	result, err := runner.RunWeek(context.Background(), "20170115")
	if err != nil {
		t.Fatalf("RunWeek() error = %v", err)
	}
	if result.PingsRead != 0 || result.RowsWritten != 0 {
		t.Errorf("empty store run = %+v, want zeros", result)
	}
}

func TestRunWeekMalformedWeekStart(t *testing.T) {
	runner, _ := newTestRunner(t)
	if _, err := runner.RunWeek(context.Background(), "2017-01-15"); err == nil {
		t.Error("expected error for dashed week start")
	}
}

func TestLatestClosedWeek(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			// 2017-02-02 is a Thursday; cutoff 2017-01-15 is itself a Sunday.
			"cutoff lands on sunday",
			time.Date(2017, 2, 2, 12, 0, 0, 0, time.UTC),
			"20170115",
		},
		{
			// One day earlier the 2017-01-15 window has not elapsed.
			"window still open",
			time.Date(2017, 2, 1, 23, 59, 0, 0, time.UTC),
			"20170108",
		},
		{
			"mid week snaps back to sunday",
			time.Date(2017, 2, 7, 0, 0, 0, 0, time.UTC),
			"20170115",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatestClosedWeek(tt.now); got != tt.want {
				t.Errorf("LatestClosedWeek(%v) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}

func TestRunClosedWeeks(t *testing.T) {
	runner, db := newTestRunner(t)
	ctx := context.Background()

	if _, err := db.InsertPings(ctx, []models.Ping{weekPing("a", 3600)}); err != nil {
		t.Fatalf("InsertPings() error = %v", err)
	}

	now := time.Date(2017, 2, 2, 12, 0, 0, 0, time.UTC)
	results := runner.RunClosedWeeks(ctx, now, 3)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantWeeks := []string{"20170115", "20170108", "20170101"}
	for i, want := range wantWeeks {
		if results[i].WeekStart != want {
			t.Errorf("results[%d].WeekStart = %q, want %q", i, results[i].WeekStart, want)
		}
	}
	// Only the latest week has an eligible ping.
	if results[0].RowsWritten != 1 {
		t.Errorf("latest week rows = %d, want 1", results[0].RowsWritten)
	}
	if results[1].RowsWritten != 0 || results[2].RowsWritten != 0 {
		t.Errorf("older weeks should be empty: %+v", results[1:])
	}
}

func TestRunClosedWeeksCanceled(t *testing.T) {
	runner, _ := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runner.RunClosedWeeks(ctx, time.Date(2017, 2, 2, 0, 0, 0, 0, time.UTC), 3)
	if len(results) != 0 {
		t.Errorf("canceled pass produced %d results, want 0", len(results))
	}
}
