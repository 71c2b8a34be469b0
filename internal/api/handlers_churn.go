// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acmiyaguchi/telemetry-churn/internal/database"
	"github.com/acmiyaguchi/telemetry-churn/internal/logging"
)

// Summaries returns churn summary rows, filterable by week, channel, and
// country, with offset pagination.
func (h *Handler) Summaries(w http.ResponseWriter, r *http.Request) {
	req := SummariesRequest{
		WeekStart: r.URL.Query().Get("week_start"),
		Channel:   r.URL.Query().Get("channel"),
		Country:   r.URL.Query().Get("country"),
		Limit:     getIntParam(r, "limit", h.cfg.API.DefaultPageSize),
		Offset:    getIntParam(r, "offset", 0),
	}
	if req.Limit > h.cfg.API.MaxPageSize {
		req.Limit = h.cfg.API.MaxPageSize
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := withTimeout(r, 30*time.Second)
	defer cancel()

	start := time.Now()
	summaries, err := h.db.Summaries(ctx, database.SummaryFilter{
		WeekStart: req.WeekStart,
		Channel:   req.Channel,
		Country:   req.Country,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"failed to query churn summaries", err)
		return
	}

	respondSuccess(w, http.StatusOK, summaries, time.Since(start))
}

// ComputedWeeks lists the week starts with computed summaries, newest first.
func (h *Handler) ComputedWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 10*time.Second)
	defer cancel()

	start := time.Now()
	weeks, err := h.db.ComputedWeeks(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED",
			"failed to list computed weeks", err)
		return
	}

	respondSuccess(w, http.StatusOK, weeks, time.Since(start))
}

// ComputeWeek recomputes the churn aggregation for one week. The operation
// replaces any previous result for that week, so retries are safe.
func (h *Handler) ComputeWeek(w http.ResponseWriter, r *http.Request) {
	req := ComputeWeekRequest{
		WeekStart: chi.URLParam(r, "week_start"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := withTimeout(r, 10*time.Minute)
	defer cancel()

	result, err := h.runner.RunWeek(ctx, req.WeekStart)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("week_start", sanitizeLogValue(req.WeekStart)).
			Msg("Week compute failed")
		respondError(w, http.StatusInternalServerError, "COMPUTE_FAILED",
			"churn aggregation failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, result, time.Duration(result.DurationMS)*time.Millisecond)
}
