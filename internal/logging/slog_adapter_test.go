// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	slogger := slog.New(NewSlogHandlerWithLogger(zl))

	slogger.Info("supervisor event", slog.String("service", "etl"), slog.Int("restarts", 2))

	out := buf.String()
	if !strings.Contains(out, `"message":"supervisor event"`) {
		t.Errorf("message missing: %q", out)
	}
	if !strings.Contains(out, `"service":"etl"`) {
		t.Errorf("string attr missing: %q", out)
	}
	if !strings.Contains(out, `"restarts":2`) {
		t.Errorf("int attr missing: %q", out)
	}
}

func TestSlogHandlerLevelMapping(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.WarnLevel)
	handler := NewSlogHandlerWithLogger(zl)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	handler := NewSlogHandlerWithLogger(zl).
		WithAttrs([]slog.Attr{slog.String("tree", "root")}).
		WithGroup("suture")
	slogger := slog.New(handler)

	slogger.Warn("service failed", slog.String("name", "http"))

	out := buf.String()
	if !strings.Contains(out, `"tree":"root"`) {
		t.Errorf("pre-configured attr missing: %q", out)
	}
	if !strings.Contains(out, `"suture.name":"http"`) {
		t.Errorf("group-prefixed attr missing: %q", out)
	}
}
