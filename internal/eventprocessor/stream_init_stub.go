// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

//go:build !nats

package eventprocessor

import (
	"context"
	"fmt"
)

// StreamInitializer is a stub when NATS dependencies are not compiled in.
// Build with -tags=nats to enable JetStream stream management.
type StreamInitializer struct {
	config StreamConfig
}

// NewStreamInitializer returns an error when NATS dependencies are not
// compiled in.
func NewStreamInitializer(js interface{}, cfg *StreamConfig) (*StreamInitializer, error) {
	return nil, fmt.Errorf("stream initializer not available: build with -tags=nats")
}

// IsHealthy always reports false for the stub.
func (s *StreamInitializer) IsHealthy(ctx context.Context) bool {
	return false
}

// Config returns the stream configuration.
func (s *StreamInitializer) Config() StreamConfig {
	return s.config
}
