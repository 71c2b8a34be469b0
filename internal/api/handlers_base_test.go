// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/etl"
	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Ingest: config.IngestConfig{
			BatchSize:       100,
			FlushInterval:   50 * time.Millisecond,
			MaxPayloadBytes: 1 << 20,
		},
		API: config.APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
	}
}

// testEnv bundles the handler with its backing stores for assertions.
type testEnv struct {
	handler  *Handler
	router   http.Handler
	db       *database.DB
	appender *eventprocessor.Appender
}

func newTestEnv(t *testing.T) *testEnv {
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

	cfg := testConfig()
	appender := eventprocessor.NewAppender(db, eventprocessor.AppenderConfigFrom(&cfg.Ingest))

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		_ = appender.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-serveDone
	})

	runner := etl.NewRunner(db, &config.ChurnConfig{})
	handler := NewHandler(db, runner, appender, nil, cfg)
	router := NewRouter(handler, NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true}))

	return &testEnv{
		handler:  handler,
		router:   router.Setup(),
		db:       db,
		appender: appender,
	}
}

func decodeResponse(t *testing.T, body []byte) *models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, body)
	}
	return &resp
}

func waitForPingCount(t *testing.T, db *database.DB, want int64) {
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
