// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Recommender is the engine surface the handlers need.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	TopTen(ctx context.Context) (*recommend.Response, error)
}

// ReadinessCheck is one dependency checked by /api/health/ready.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler serves the recommendation and health endpoints.
type Handler struct {
	engine    Recommender
	checks    []ReadinessCheck
	startTime time.Time
}

// NewHandler creates a handler backed by engine.
func NewHandler(engine Recommender, checks ...ReadinessCheck) *Handler {
	return &Handler{
		engine:    engine,
		checks:    checks,
		startTime: time.Now(),
	}
}
