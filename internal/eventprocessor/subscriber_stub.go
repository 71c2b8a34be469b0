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

// Subscriber is a stub when NATS dependencies are not compiled in.
// Build with -tags=nats to enable the Watermill subscriber.
type Subscriber struct{}

// NewSubscriber returns an error when NATS dependencies are not compiled in.
func NewSubscriber(cfg *SubscriberConfig, logger interface{}) (*Subscriber, error) {
	return nil, fmt.Errorf("NATS subscriber not available: build with -tags=nats")
}

// Close is a no-op stub.
func (s *Subscriber) Close() error {
	return nil
}

// PingConsumer is a stub when NATS dependencies are not compiled in.
type PingConsumer struct{}

// NewPingConsumer returns a stub consumer.
func NewPingConsumer(sub *Subscriber, appender *Appender) *PingConsumer {
	return &PingConsumer{}
}

// Serve is a stub that returns an error.
func (c *PingConsumer) Serve(ctx context.Context) error {
	return fmt.Errorf("NATS consumer not available: build with -tags=nats")
}
