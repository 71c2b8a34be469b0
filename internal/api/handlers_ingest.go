// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/acmiyaguchi/telemetry-churn/internal/eventprocessor"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
	"github.com/acmiyaguchi/telemetry-churn/internal/metrics"
	"github.com/acmiyaguchi/telemetry-churn/internal/models"
)

// withTimeout derives a bounded context from the request.
func withTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// IngestPings accepts a JSON array of telemetry pings. Pings missing the
// required identity fields are counted as rejected; the rest are queued for
// batched insertion, or published to NATS when the transport is enabled.
// Partial acceptance is reported rather than failing the whole batch.
func (h *Handler) IngestPings(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Ingest.MaxPayloadBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.PingsRejected.WithLabelValues("payload_too_large").Inc()
		respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"request body exceeds the configured limit", err)
		return
	}

	var pings []models.Ping
	if err := json.Unmarshal(body, &pings); err != nil {
		// Accept a single object for low-volume clients.
		var single models.Ping
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			metrics.PingsRejected.WithLabelValues("parse").Inc()
			respondError(w, http.StatusBadRequest, "INVALID_JSON",
				"body must be a ping object or array of pings", err)
			return
		}
		pings = []models.Ping{single}
	}

	if len(pings) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_BATCH", "no pings in request", nil)
		return
	}

	result := models.IngestResult{}
	for _, ping := range pings {
		if ping.ClientID == "" || ping.SubmissionDateS3 == "" {
			result.Rejected++
			metrics.PingsRejected.WithLabelValues("validation").Inc()
			continue
		}

		if err := h.dispatchPing(r.Context(), ping); err != nil {
			result.Rejected++
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Ping dispatch failed")
			continue
		}
		result.Accepted++
	}

	metrics.PingsReceived.WithLabelValues("http").Add(float64(result.Accepted))

	status := http.StatusAccepted
	if result.Accepted == 0 {
		status = http.StatusBadRequest
	}
	respondSuccess(w, status, result, 0)
}

// dispatchPing routes an accepted ping to the configured ingest path.
func (h *Handler) dispatchPing(ctx context.Context, ping models.Ping) error {
	if h.publisher != nil {
		event := eventprocessor.NewPingEvent("http", ping)
		return h.publisher.PublishEvent(ctx, event)
	}
	return h.appender.Enqueue(ping)
}
