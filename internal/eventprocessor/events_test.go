// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package eventprocessor

import (
	"strings"
	"testing"

	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

func validPing() models.Ping {
	return models.Ping{
		ClientID:          "c6cfe2cd-9b22-4dc2-a217-15b9e7825dbf",
		SubmissionDateS3:  "20170116",
		NormalizedChannel: "release",
	}
}

func TestNewPingEvent(t *testing.T) {
	event := NewPingEvent("http", validPing())

	if event.EventID == "" {
		t.Error("expected generated event ID")
	}
	if event.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", event.SchemaVersion, SchemaVersion)
	}
	if event.ReceivedAt.IsZero() {
		t.Error("expected ReceivedAt to be set")
	}
	if event.Source != "http" {
		t.Errorf("Source = %q, want %q", event.Source, "http")
	}
}

func TestPingEventTopic(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"http", "telemetry.ping.http"},
		{"backfill", "telemetry.ping.backfill"},
	}

	for _, tt := range tests {
		event := NewPingEvent(tt.source, validPing())
		if got := event.Topic(); got != tt.want {
			t.Errorf("Topic() for source %q = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestPingEventValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PingEvent)
		wantField string
	}{
		{
			name:   "valid event",
			mutate: func(e *PingEvent) {},
		},
		{
			name:      "missing event ID",
			mutate:    func(e *PingEvent) { e.EventID = "" },
			wantField: "event_id",
		},
		{
			name:      "missing source",
			mutate:    func(e *PingEvent) { e.Source = "" },
			wantField: "source",
		},
		{
			name:      "missing client ID",
			mutate:    func(e *PingEvent) { e.Ping.ClientID = "" },
			wantField: "ping.client_id",
		},
		{
			name:      "missing submission date",
			mutate:    func(e *PingEvent) { e.Ping.SubmissionDateS3 = "" },
			wantField: "ping.submission_date_s3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewPingEvent("http", validPing())
			tt.mutate(event)

			err := event.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not mention field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestGetSchemaVersionDefaults(t *testing.T) {
	event := &PingEvent{}
	if got := event.GetSchemaVersion(); got != 1 {
		t.Errorf("GetSchemaVersion() on zero value = %d, want 1", got)
	}

	event.SchemaVersion = 2
	if got := event.GetSchemaVersion(); got != 2 {
		t.Errorf("GetSchemaVersion() = %d, want 2", got)
	}
}
