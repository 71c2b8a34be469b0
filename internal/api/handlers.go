// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"time"

	"github.com/acmiyaguchi/telemetry-churn/internal/config"
	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/etl"
	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
)

// Version is the reported service version, overridable at build time via
// -ldflags "-X ...api.Version=v1.2.3".
var Version = "dev"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	db        *database.DB
	runner    *etl.Runner
	appender  *eventprocessor.Appender
	publisher *eventprocessor.Publisher
	cfg       *config.Config
	startTime time.Time
}

// NewHandler creates the handler set. The publisher may be nil; ingested
// pings then go straight to the batch appender.
func NewHandler(
	db *database.DB,
	runner *etl.Runner,
	appender *eventprocessor.Appender,
	publisher *eventprocessor.Publisher,
	cfg *config.Config,
) *Handler {
	return &Handler{
		db:        db,
		runner:    runner,
		appender:  appender,
		publisher: publisher,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
