// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

// Package etl orchestrates churn aggregation runs: loading eligible pings,
// computing the weekly summaries, and replacing the stored rows.
package etl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/churn"
	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// Runner executes churn aggregation runs against the database.
type Runner struct {
	db  *database.DB
	cfg *config.ChurnConfig

	mu          sync.Mutex
	lastRunTime *time.Time
}

// NewRunner creates a Runner.
func NewRunner(db *database.DB, cfg *config.ChurnConfig) *Runner {
	return &Runner{db: db, cfg: cfg}
}

// LastRunTime returns the completion time of the most recent successful run,
// or nil if no run has completed yet.
func (r *Runner) LastRunTime() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRunTime
}

// RunWeek computes and stores churn summaries for one target week. The run
// is idempotent: rerunning over unchanged data stores identical rows.
func (r *Runner) RunWeek(ctx context.Context, weekStart string) (*models.ChurnWeekResult, error) {
	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
	log := logging.Ctx(ctx)
	start := time.Now()

	log.Info().Str("week_start", weekStart).Msg("Churn run started")

	pings, err := r.db.EligiblePings(ctx, weekStart)
	if err != nil {
		metrics.RecordChurnRun(time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("failed to load pings for week %s: %w", weekStart, err)
	}

	summaries, err := churn.ComputeChurnWeek(pings, weekStart)
	if err != nil {
		metrics.RecordChurnRun(time.Since(start), len(pings), 0, err)
		return nil, fmt.Errorf("failed to aggregate week %s: %w", weekStart, err)
	}

	if err := r.db.ReplaceWeekSummaries(ctx, weekStart, summaries); err != nil {
		metrics.RecordChurnRun(time.Since(start), len(pings), 0, err)
		return nil, fmt.Errorf("failed to store summaries for week %s: %w", weekStart, err)
	}

	elapsed := time.Since(start)
	metrics.RecordChurnRun(elapsed, len(pings), len(summaries), nil)

	now := time.Now()
	r.mu.Lock()
	r.lastRunTime = &now
	r.mu.Unlock()

	var usageHours float64
	for i := range summaries {
		usageHours += summaries[i].UsageHours
	}

	result := &models.ChurnWeekResult{
		WeekStart:   weekStart,
		RowsWritten: len(summaries),
		PingsRead:   len(pings),
		DurationMS:  elapsed.Milliseconds(),
		UsageHours:  usageHours,
	}

	log.Info().
		Str("week_start", weekStart).
		Int("pings_read", result.PingsRead).
		Int("rows_written", result.RowsWritten).
		Dur("elapsed", elapsed).
		Msg("Churn run complete")

	return result, nil
}

// LatestClosedWeek returns the most recent Sunday-anchored week whose 17-day
// submission window has fully elapsed as of now. Aggregating an open week
// would undercount late submissions, so the scheduler only targets closed
// weeks.
func LatestClosedWeek(now time.Time) string {
	d := now.UTC()
	today := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	// A week is closed once the day after its last submission day has
	// arrived: week_start + 18 days <= today.
	cutoff := today.AddDate(0, 0, -(churn.SubmissionWindowDays + 1))
	weekStart := cutoff.AddDate(0, 0, -int(cutoff.Weekday()))
	return churn.FormatWeekStart(weekStart)
}

// RunClosedWeeks recomputes the latest closed week and up to maxWeeks-1
// weeks before it. Late submissions keep arriving for up to 17 days, so
// recent closed weeks are recomputed until their windows are stale.
// Individual week failures are logged and do not stop the pass.
func (r *Runner) RunClosedWeeks(ctx context.Context, now time.Time, maxWeeks int) []models.ChurnWeekResult {
	if maxWeeks < 1 {
		maxWeeks = 1
	}

	latest, err := churn.ParseWeekStart(LatestClosedWeek(now))
	if err != nil {
		// LatestClosedWeek always emits a valid date.
		logging.CtxErr(ctx, err).Msg("Failed to parse latest closed week")
		return nil
	}

	results := make([]models.ChurnWeekResult, 0, maxWeeks)
	for i := 0; i < maxWeeks; i++ {
		weekStart := churn.FormatWeekStart(latest.AddDate(0, 0, -7*i))

		select {
		case <-ctx.Done():
			logging.Ctx(ctx).Warn().Str("week_start", weekStart).Msg("Scheduler pass canceled")
			return results
		default:
		}

		result, err := r.RunWeek(ctx, weekStart)
		if err != nil {
			logging.CtxErr(ctx, err).Str("week_start", weekStart).Msg("Scheduled churn run failed")
			continue
		}
		results = append(results, *result)
	}
	return results
}
