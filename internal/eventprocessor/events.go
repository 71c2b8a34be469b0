// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"time"

	"github.com/google/uuid"

	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// SchemaVersion is the current event schema version. Increment on breaking
// changes to PingEvent.
const SchemaVersion = 1

// TopicPrefix is the subject prefix for ping events. The full topic is
// TopicPrefix plus the source, e.g. "telemetry.ping.http".
const TopicPrefix = "telemetry.ping."

// PingEvent is the transport envelope for a single telemetry ping.
// Consumers should tolerate older schema versions.
type PingEvent struct {
	SchemaVersion int `json:"schema_version,omitempty"`

	// EventID doubles as the NATS message ID for deduplication.
	EventID string `json:"event_id"`

	// Source names where the ping entered the system: http, backfill.
	Source string `json:"source"`

	ReceivedAt time.Time `json:"received_at"`

	Ping models.Ping `json:"ping"`
}

// NewPingEvent creates an envelope with a fresh ID and timestamp.
func NewPingEvent(source string, ping models.Ping) *PingEvent {
	return &PingEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Source:        source,
		ReceivedAt:    time.Now().UTC(),
		Ping:          ping,
	}
}

// Topic returns the NATS subject for this event.
func (e *PingEvent) Topic() string {
	return TopicPrefix + e.Source
}

// GetSchemaVersion returns the schema version, defaulting to 1 for events
// serialized before the field existed.
func (e *PingEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// Validate checks required envelope fields.
func (e *PingEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Source == "" {
		return &ValidationError{Field: "source", Message: "required"}
	}
	if e.Ping.ClientID == "" {
		return &ValidationError{Field: "ping.client_id", Message: "required"}
	}
	if e.Ping.SubmissionDateS3 == "" {
		return &ValidationError{Field: "ping.submission_date_s3", Message: "required"}
	}
	return nil
}
