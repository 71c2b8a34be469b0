// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIngestPingsBatch(t *testing.T) {
	env := newTestEnv(t)

	body := `[
		{"client_id": "client-a", "submission_date_s3": "20170116", "normalized_channel": "release", "subsession_length": 3600},
		{"client_id": "client-b", "submission_date_s3": "20170117", "normalized_channel": "beta"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	resp := decodeResponse(t, rec.Body.Bytes())
	data := resp.Data.(map[string]interface{})
	if data["accepted"] != float64(2) {
		t.Errorf("accepted = %v, want 2", data["accepted"])
	}
	if data["rejected"] != float64(0) {
		t.Errorf("rejected = %v, want 0", data["rejected"])
	}

	waitForPingCount(t, env.db, 2)
}

func TestIngestSingleObject(t *testing.T) {
	env := newTestEnv(t)

	body := `{"client_id": "client-a", "submission_date_s3": "20170116"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	waitForPingCount(t, env.db, 1)
}

func TestIngestRejectsIncompletePings(t *testing.T) {
	env := newTestEnv(t)

	// One valid, one missing client_id, one missing submission date.
	body := `[
		{"client_id": "client-a", "submission_date_s3": "20170116"},
		{"submission_date_s3": "20170116"},
		{"client_id": "client-b"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	resp := decodeResponse(t, rec.Body.Bytes())
	data := resp.Data.(map[string]interface{})
	if data["accepted"] != float64(1) {
		t.Errorf("accepted = %v, want 1", data["accepted"])
	}
	if data["rejected"] != float64(2) {
		t.Errorf("rejected = %v, want 2", data["rejected"])
	}
}

func TestIngestMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	resp := decodeResponse(t, rec.Body.Bytes())
	if resp.Error == nil || resp.Error.Code != "INVALID_JSON" {
		t.Errorf("error = %+v, want INVALID_JSON", resp.Error)
	}
}

func TestIngestEmptyBatch(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings", strings.NewReader(`[]`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIngestAllRejectedReturnsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pings",
		strings.NewReader(`[{"channel": "release"}]`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
