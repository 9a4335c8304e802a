// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import "time"

// responseCacheType labels result cache lookups made by the engine.
const responseCacheType = "recommend_response"

// EngineObserver feeds recommendation engine events into Prometheus.
// The zero value is ready to use.
type EngineObserver struct{}

// ObserveRequest records the outcome and latency of one engine call.
func (EngineObserver) ObserveRequest(mode, outcome string, d time.Duration) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveFallback counts a popularity fallback.
func (EngineObserver) ObserveFallback(mode string) {
	RecommendFallbacks.WithLabelValues(mode).Inc()
}

// ObserveDropped counts trending aggregates whose movie is gone.
func (EngineObserver) ObserveDropped(n int) {
	if n > 0 {
		TrendingDroppedItems.Add(float64(n))
	}
}

// ObserveCache counts a response cache lookup.
func (EngineObserver) ObserveCache(hit bool) {
	RecordCacheLookup(responseCacheType, hit)
}
