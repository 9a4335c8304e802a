// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Cache-Control values per route group.
const (
	cachePublic  = "public, max-age=60"
	cachePrivate = "private, no-store"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. chiMW may be nil for defaults.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(auth.SecurityHeaders)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(cacheControl("no-store"))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Recommendation Endpoints
	// ========================
	r.Route("/api/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		// Catalog-wide results, identical for every caller
		r.Group(func(r chi.Router) {
			r.Use(cacheControl(cachePublic))
			r.Get("/similar/{itemId}", router.handler.Similar)
			r.Get("/trending", router.handler.Trending)
		})

		// Built from the caller's own history
		r.Group(func(r chi.Router) {
			r.Use(router.auth.RequireUser)
			r.Use(router.auth.LimitUser)
			r.Use(cacheControl(cachePrivate))
			r.Get("/personalized", router.handler.Personalized)
			r.Get("/because-you-watched/{itemId}", router.handler.BecauseYouWatched)
			r.Get("/top-picks", router.handler.TopPicks)
		})
	})

	r.Route("/api/movies", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(cacheControl(cachePublic))
		r.Get("/trending/top10", router.handler.TopTen)
	})

	// ========================
	// Prometheus Metrics
	// ========================
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ========================
	// API Documentation
	// ========================
	r.With(swaggerCSP).Get("/swagger/*", swaggerHandler())

	return r
}
