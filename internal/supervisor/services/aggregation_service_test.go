// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

type fakeRunner struct {
	runs atomic.Int32
}

func (f *fakeRunner) RunClosedWeeks(ctx context.Context, now time.Time, maxWeeks int) []models.ChurnWeekResult {
	f.runs.Add(1)
	return []models.ChurnWeekResult{{WeekStart: "20170115"}}
}

func TestAggregationServiceRunsOnStartup(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewAggregationService(runner, time.Hour, 4)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && runner.runs.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if runner.runs.Load() == 0 {
		t.Fatal("expected a run at startup")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestAggregationServiceTicks(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewAggregationService(runner, 20*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && runner.runs.Load() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if runner.runs.Load() < 3 {
		t.Errorf("runs = %d, want at least 3", runner.runs.Load())
	}
}

func TestAggregationServiceDefaults(t *testing.T) {
	svc := NewAggregationService(&fakeRunner{}, 0, 0)
	if svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", svc.interval)
	}
	if svc.maxWeeks != 4 {
		t.Errorf("maxWeeks = %d, want 4", svc.maxWeeks)
	}
}
