// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"testing"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
)

func TestStreamConfigFrom(t *testing.T) {
	cfg := &config.NATSConfig{
		StreamRetentionDays: 17,
		MaxStore:            1 << 30,
	}

	sc := StreamConfigFrom(cfg)

	if sc.Name != StreamName {
		t.Errorf("Name = %q, want %q", sc.Name, StreamName)
	}
	if want := 17 * 24 * time.Hour; sc.MaxAge != want {
		t.Errorf("MaxAge = %v, want %v", sc.MaxAge, want)
	}
	if len(sc.Subjects) != 1 || sc.Subjects[0] != "telemetry.>" {
		t.Errorf("Subjects = %v, want [telemetry.>]", sc.Subjects)
	}
	if sc.MaxBytes != 1<<30 {
		t.Errorf("MaxBytes = %d, want %d", sc.MaxBytes, 1<<30)
	}
}

func TestSubscriberConfigFrom(t *testing.T) {
	cfg := &config.NATSConfig{
		URL:              "nats://localhost:4222",
		DurableName:      "churn-ingest",
		QueueGroup:       "ingesters",
		SubscribersCount: 4,
	}

	sc := SubscriberConfigFrom(cfg)

	if sc.StreamName != StreamName {
		t.Errorf("StreamName = %q, want %q", sc.StreamName, StreamName)
	}
	if sc.DurableName != "churn-ingest" {
		t.Errorf("DurableName = %q, want churn-ingest", sc.DurableName)
	}
	if sc.SubscribersCount != 4 {
		t.Errorf("SubscribersCount = %d, want 4", sc.SubscribersCount)
	}
	if sc.MaxDeliver <= 0 {
		t.Errorf("MaxDeliver = %d, want > 0", sc.MaxDeliver)
	}
}

func TestAppenderConfigFrom(t *testing.T) {
	cfg := &config.IngestConfig{
		BatchSize:          500,
		FlushInterval:      2 * time.Second,
		RateLimitPerSecond: 100,
	}

	ac := AppenderConfigFrom(cfg)

	if ac.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", ac.BatchSize)
	}
	if ac.QueueCapacity != 2000 {
		t.Errorf("QueueCapacity = %d, want 2000", ac.QueueCapacity)
	}
	if ac.RateLimitPerSecond != 100 {
		t.Errorf("RateLimitPerSecond = %v, want 100", ac.RateLimitPerSecond)
	}
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("publish")

	if cfg.Name != "publish" {
		t.Errorf("Name = %q, want publish", cfg.Name)
	}
	if cfg.FailureThreshold == 0 {
		t.Error("expected non-zero failure threshold")
	}
	if cfg.Timeout <= 0 {
		t.Error("expected positive open timeout")
	}
}
