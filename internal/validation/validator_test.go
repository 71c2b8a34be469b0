// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package validation

import (
	"strings"
	"testing"
)

type computeRequest struct {
	WeekStart string `validate:"required,weekdate"`
}

type churnQuery struct {
	WeekStart string `validate:"omitempty,weekdate"`
	Limit     int    `validate:"min=1,max=1000"`
	Offset    int    `validate:"min=0"`
}

func TestValidateWeekDate(t *testing.T) {
	tests := []struct {
		name      string
		weekStart string
		wantErr   bool
	}{
		{"valid compact date", "20170115", false},
		{"dashed form rejected", "2017-01-15", true},
		{"not a date", "20171345", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&computeRequest{WeekStart: tt.weekStart})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct(%q) error = %v, wantErr %v", tt.weekStart, err, tt.wantErr)
			}
		})
	}
}

func TestValidateClientDate(t *testing.T) {
	type row struct {
		Date string `validate:"clientdate"`
	}

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2017-01-15", false},
		{"2017-01-15T12:00:00.0+01:00", false},
		{"20170115", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateStruct(&row{Date: tt.input})
			if (err != nil) != tt.wantErr {
				t.Errorf("clientdate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRangeMessages(t *testing.T) {
	err := ValidateStruct(&churnQuery{Limit: 0})
	if err == nil {
		t.Fatal("expected validation error for zero limit")
	}
	if !strings.Contains(err.Error(), "Limit must be at least 1") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	err := ValidateStruct(&computeRequest{WeekStart: "bogus"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "WeekStart" {
		t.Errorf("details field = %v, want WeekStart", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	err := ValidateStruct(&churnQuery{WeekStart: "nope", Limit: 0, Offset: -1})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("details fields = %v, want 3 entries", apiErr.Details["fields"])
	}
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&churnQuery{WeekStart: "20170115", Limit: 100}); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}
}
