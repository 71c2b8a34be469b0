// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
)

func newTestAppender(t *testing.T, cfg AppenderConfig) (*Appender, *database.DB) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	return NewAppender(db, cfg), db
}

func waitForCount(t *testing.T, db *database.DB, want int64) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := db.CountPings(context.Background())
		if err != nil {
			t.Fatalf("count pings: %v", err)
		}
		if n == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	n, _ := db.CountPings(context.Background())
	t.Fatalf("ping count = %d, want %d", n, want)
}

func TestAppenderFlushesFullBatch(t *testing.T) {
	appender, db := newTestAppender(t, AppenderConfig{
		BatchSize:     3,
		FlushInterval: time.Hour, // only batch-size flushes
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = appender.Serve(ctx)
	}()

	for i := 0; i < 3; i++ {
		ping := validPing()
		ping.ClientID = fmt.Sprintf("client-%d", i)
		if err := appender.Enqueue(ping); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	waitForCount(t, db, 3)

	cancel()
	<-serveDone
}

func TestAppenderFlushesOnInterval(t *testing.T) {
	appender, db := newTestAppender(t, AppenderConfig{
		BatchSize:     1000,
		FlushInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = appender.Serve(ctx)
	}()

	if err := appender.Enqueue(validPing()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCount(t, db, 1)

	cancel()
	<-serveDone
}

func TestAppenderDrainsOnClose(t *testing.T) {
	appender, db := newTestAppender(t, AppenderConfig{
		BatchSize:     1000,
		FlushInterval: time.Hour,
	})

	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = appender.Serve(context.Background())
	}()

	for i := 0; i < 5; i++ {
		ping := validPing()
		ping.ClientID = fmt.Sprintf("client-%d", i)
		if err := appender.Enqueue(ping); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	if err := appender.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-serveDone

	waitForCount(t, db, 5)
}

func TestAppenderRejectsAfterClose(t *testing.T) {
	appender, _ := newTestAppender(t, AppenderConfig{BatchSize: 10})

	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = appender.Serve(context.Background())
	}()

	if err := appender.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-serveDone

	if err := appender.Enqueue(validPing()); !errors.Is(err, ErrAppenderClosed) {
		t.Errorf("Enqueue after close = %v, want %v", err, ErrAppenderClosed)
	}
}

func TestAppenderQueueFull(t *testing.T) {
	// No Serve loop running, so the queue never drains.
	appender, _ := newTestAppender(t, AppenderConfig{
		BatchSize:     2,
		QueueCapacity: 2,
		FlushInterval: time.Hour,
	})

	if err := appender.Enqueue(validPing()); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	if err := appender.Enqueue(validPing()); err != nil {
		t.Fatalf("enqueue 2: %v", err)
	}
	if err := appender.Enqueue(validPing()); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue on full queue = %v, want %v", err, ErrQueueFull)
	}
	if depth := appender.QueueDepth(); depth != 2 {
		t.Errorf("QueueDepth() = %d, want 2", depth)
	}
}
