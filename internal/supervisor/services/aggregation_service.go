// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package services

import (
	"context"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// WeekRunner is the subset of etl.Runner used by the aggregation loop.
type WeekRunner interface {
	RunClosedWeeks(ctx context.Context, now time.Time, maxWeeks int) []models.ChurnWeekResult
}

// AggregationService periodically recomputes the latest closed weeks.
// Runs are idempotent, so overlapping recomputation after a restart is
// harmless.
type AggregationService struct {
	runner   WeekRunner
	interval time.Duration
	maxWeeks int
	now      func() time.Time
	name     string
}

// NewAggregationService creates the scheduled aggregation loop. interval is
// typically an hour; maxWeeks bounds how far back each run looks.
func NewAggregationService(runner WeekRunner, interval time.Duration, maxWeeks int) *AggregationService {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxWeeks <= 0 {
		maxWeeks = 4
	}
	return &AggregationService{
		runner:   runner,
		interval: interval,
		maxWeeks: maxWeeks,
		now:      time.Now,
		name:     "aggregation-loop",
	}
}

// Serve implements suture.Service: one run at startup, then on every tick.
func (s *AggregationService) Serve(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *AggregationService) runOnce(ctx context.Context) {
	results := s.runner.RunClosedWeeks(ctx, s.now(), s.maxWeeks)
	logging.Info().
		Str("component", "aggregation-loop").
		Int("weeks_computed", len(results)).
		Msg("Scheduled aggregation pass complete")
}

// String identifies the service in supervisor logs.
func (s *AggregationService) String() string {
	return s.name
}
