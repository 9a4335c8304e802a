// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/logging"
)

// readinessTimeout bounds all dependency checks of one readiness request.
const readinessTimeout = 2 * time.Second

type healthResponse struct {
	Success bool              `json:"success"`
	Status  string            `json:"status"`
	Uptime  float64           `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthLive handles liveness check requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of external dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, healthResponse{
		Success: true,
		Status:  "alive",
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests (Kubernetes-style).
// Returns 200 only when every registered dependency answers its ping,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]string, len(h.checks))
	var g errgroup.Group
	for i, check := range h.checks {
		g.Go(func() error {
			if err := check.Ping(ctx); err != nil {
				logging.CtxWarn(ctx).Err(err).Str("check", check.Name).Msg("Readiness check failed")
				results[i] = err.Error()
				return nil
			}
			results[i] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	ready := true
	checks := make(map[string]string, len(h.checks))
	for i, check := range h.checks {
		checks[check.Name] = results[i]
		if results[i] != "ok" {
			ready = false
		}
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, healthResponse{
		Success: ready,
		Status:  status,
		Uptime:  time.Since(h.startTime).Seconds(),
		Checks:  checks,
	})
}
