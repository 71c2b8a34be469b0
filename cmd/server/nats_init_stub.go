// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

//go:build !nats

package main

import (
	"context"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/supervisor"
)

// NATSComponents is a stub for non-NATS builds.
type NATSComponents struct{}

// InitNATS is a no-op stub for non-NATS builds.
func InitNATS(cfg *config.Config, appender *eventprocessor.Appender) (*NATSComponents, error) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}
	return nil, nil
}

// Publisher returns nil for non-NATS builds.
func (c *NATSComponents) Publisher() *eventprocessor.Publisher {
	return nil
}

// Shutdown is a no-op stub for non-NATS builds.
func (c *NATSComponents) Shutdown(_ context.Context) {}

// AddNATSToSupervisor is a no-op stub for non-NATS builds.
func AddNATSToSupervisor(_ *supervisor.Tree, _ *NATSComponents) {}
