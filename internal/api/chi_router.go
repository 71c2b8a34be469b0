// Telemetry Churn - Desktop Telemetry Churn Cohort Aggregation
// Copyright 2026 A. Miyaguchi (acmiyaguchi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmiyaguchi/telemetry-churn

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from a handler set and middleware factory.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/pings", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitIngest())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Post("/", router.handler.IngestPings)
	})

	r.Route("/api/v1/churn", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.With(router.chiMiddleware.RateLimitQuery()).Get("/", router.handler.Summaries)
		r.With(router.chiMiddleware.RateLimitQuery()).Get("/weeks", router.handler.ComputedWeeks)
		r.With(router.chiMiddleware.RateLimitCompute()).
			Post("/{week_start}/compute", router.handler.ComputeWeek)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
