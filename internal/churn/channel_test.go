// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package churn

import "testing"

func TestCompositeChannel(t *testing.T) {
	tests := []struct {
		name           string
		channel        string
		distributionID string
		want           string
	}{
		{"release with cck distribution", "release", "mozilla42", "release-cck-mozilla42"},
		{"beta with cck distribution", "beta", "mozilla42", "beta-cck-mozilla42"},
		{"release without distribution", "release", "", "release"},
		{"missing channel", "", "", "unknown"},
		{"missing channel with distribution", "", "mozilla42", "unknown-cck-mozilla42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompositeChannel(tt.channel, tt.distributionID); got != tt.want {
				t.Errorf("CompositeChannel(%q, %q) = %q, want %q", tt.channel, tt.distributionID, got, tt.want)
			}
		})
	}
}

func TestUnknownIfEmpty(t *testing.T) {
	if got := unknownIfEmpty(""); got != Unknown {
		t.Errorf("unknownIfEmpty(\"\") = %q, want %q", got, Unknown)
	}
	if got := unknownIfEmpty("en-US"); got != "en-US" {
		t.Errorf("unknownIfEmpty(en-US) = %q, want en-US", got)
	}
}
