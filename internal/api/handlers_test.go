// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/datastore"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

const testSecret = "api-test-secret-with-at-least-32-chars"

// fakeRecommender records the last request and returns canned results.
type fakeRecommender struct {
	mu   sync.Mutex
	last recommend.Request
	resp *recommend.Response
	err  error
}

func (f *fakeRecommender) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &recommend.Response{Mode: req.Mode}, nil
	}
	return f.resp, nil
}

func (f *fakeRecommender) TopTen(context.Context) (*recommend.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRecommender) lastRequest() recommend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type testServer struct {
	handler http.Handler
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T, engine Recommender, chiMW *ChiMiddleware, checks ...ReadinessCheck) *testServer {
	t.Helper()
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	authMW := auth.NewMiddleware(jwtManager, nil, nil)
	router := NewRouter(NewHandler(engine, checks...), authMW, chiMW)
	return &testServer{handler: router.SetupChi(), jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func sampleResponse() *recommend.Response {
	return &recommend.Response{
		Mode: recommend.ModePersonalized,
		Recommendations: []recommend.Recommendation{
			{Item: recommend.Item{ID: "m3", Title: "Collateral", Genres: []string{"Crime"}, Rating: 7.5}, Rank: 1},
		},
		Reason:    "Based on your interest in Crime, Drama",
		TopGenres: []string{"Crime", "Drama"},
	}
}

func TestAuthenticatedRoutes(t *testing.T) {
	fake := &fakeRecommender{resp: sampleResponse()}
	srv := newTestServer(t, fake, nil)

	tests := []struct {
		path     string
		wantMode recommend.Mode
		wantItem string
	}{
		{"/api/recommendations/personalized", recommend.ModePersonalized, ""},
		{"/api/recommendations/top-picks", recommend.ModeTopPicks, ""},
		{"/api/recommendations/because-you-watched/m1", recommend.ModeBecauseYouWatched, "m1"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := srv.get(t, tt.path, "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("no token status = %d, want 401", rec.Code)
			}
			if got := decodeBody(t, rec)["message"]; got != auth.MsgNoToken {
				t.Errorf("message = %v, want %q", got, auth.MsgNoToken)
			}

			rec = srv.get(t, tt.path, "garbage")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("bad token status = %d, want 401", rec.Code)
			}

			rec = srv.get(t, tt.path, srv.token(t, "alice"))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			req := fake.lastRequest()
			if req.Mode != tt.wantMode || req.UserID != "alice" || req.ItemID != tt.wantItem {
				t.Errorf("engine request = %+v, want mode %v user alice item %q", req, tt.wantMode, tt.wantItem)
			}
			if req.RequestID == "" {
				t.Error("engine request has no request id")
			}
			if got := rec.Header().Get("Cache-Control"); got != cachePrivate {
				t.Errorf("Cache-Control = %q, want %q", got, cachePrivate)
			}
		})
	}
}

func TestPersonalized_ResponseShape(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{resp: sampleResponse()}, nil)

	rec := srv.get(t, "/api/recommendations/personalized", srv.token(t, "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body recommendationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := recommendationsResponse{
		Success:         true,
		Recommendations: sampleResponse().Recommendations,
		Reason:          "Based on your interest in Crime, Drama",
		TopGenres:       []string{"Crime", "Drama"},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}

	raw := decodeBody(t, rec)
	for _, absent := range []string{"basedOn", "insights", "mode"} {
		if _, ok := raw[absent]; ok {
			t.Errorf("personalized body has %q", absent)
		}
	}
}

func TestEmptyRecommendationsIsArray(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{resp: &recommend.Response{BasedOn: "Heat"}}, nil)

	rec := srv.get(t, "/api/recommendations/similar/m1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	recs, ok := decodeBody(t, rec)["recommendations"].([]any)
	if !ok || len(recs) != 0 {
		t.Errorf("recommendations = %v, want []", decodeBody(t, rec)["recommendations"])
	}
}

func TestSimilar(t *testing.T) {
	fake := &fakeRecommender{}
	srv := newTestServer(t, fake, nil)

	rec := srv.get(t, "/api/recommendations/similar/tt0113277", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if req := fake.lastRequest(); req.Mode != recommend.ModeSimilar || req.ItemID != "tt0113277" || req.UserID != "" {
		t.Errorf("engine request = %+v", req)
	}
	if got := rec.Header().Get("Cache-Control"); got != cachePublic {
		t.Errorf("Cache-Control = %q, want %q", got, cachePublic)
	}

	rec = srv.get(t, "/api/recommendations/similar/a%20b", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestTrending_Query(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantLimit   int
		wantAllTime bool
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK},
		{name: "limit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "max limit", query: "?limit=50", wantStatus: http.StatusOK, wantLimit: 50},
		{name: "all time", query: "?window=all&limit=3", wantStatus: http.StatusOK, wantLimit: 3, wantAllTime: true},
		{name: "explicit week", query: "?window=week", wantStatus: http.StatusOK},
		{name: "zero limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "limit too large", query: "?limit=51", wantStatus: http.StatusBadRequest},
		{name: "limit not a number", query: "?limit=ten", wantStatus: http.StatusBadRequest},
		{name: "unknown window", query: "?window=month", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRecommender{}
			srv := newTestServer(t, fake, nil)

			rec := srv.get(t, "/api/recommendations/trending"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				body := decodeBody(t, rec)
				if body["success"] != false || body["message"] == "" {
					t.Errorf("error body = %v", body)
				}
				return
			}
			req := fake.lastRequest()
			if req.Mode != recommend.ModeTrending || req.Limit != tt.wantLimit || req.AllTime != tt.wantAllTime {
				t.Errorf("engine request = %+v, want limit %d allTime %v", req, tt.wantLimit, tt.wantAllTime)
			}
		})
	}
}

func TestEngineErrors(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"similar not found", "/api/recommendations/similar/m9", fmt.Errorf("get item m9: %w", recommend.ErrNotFound), http.StatusNotFound, msgMovieNotFound},
		{"personalized unknown user", "/api/recommendations/personalized", fmt.Errorf("get user activity: %w", recommend.ErrNotFound), http.StatusNotFound, msgUserNotFound},
		{"store failure", "/api/recommendations/trending", &recommend.StoreError{Op: "list activity", Err: errors.New("disk")}, http.StatusInternalServerError, "Failed to get trending movies"},
		{"top picks failure", "/api/recommendations/top-picks", &recommend.StoreError{Op: "query items", Err: errors.New("disk")}, http.StatusInternalServerError, "Failed to get top picks"},
		{"breaker open", "/api/recommendations/similar/m1", &recommend.StoreError{Op: "get item", Err: fmt.Errorf("%w: circuit breaker is open", datastore.ErrUnavailable)}, http.StatusInternalServerError, "Failed to get similar movies"},
		{"unclassified failure", "/api/recommendations/personalized", errors.New("boom"), http.StatusInternalServerError, "Failed to get recommendations"},
		{"invalid", "/api/recommendations/trending", fmt.Errorf("%w: limit", recommend.ErrInvalidRequest), http.StatusBadRequest, msgInvalid},
		{"top10 failure", "/api/movies/trending/top10", errors.New("boom"), http.StatusInternalServerError, "Failed to fetch top 10 movies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeRecommender{err: tt.err}, nil)

			rec := srv.get(t, tt.path, srv.token(t, "alice"))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeBody(t, rec)
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
			if got := rec.Header().Get("Retry-After"); got != "" {
				t.Errorf("Retry-After = %q, want none", got)
			}
		})
	}
}

func TestTopTen(t *testing.T) {
	resp := &recommend.Response{
		Mode:   recommend.ModeTrending,
		Period: "Last 7 days",
		Trending: []recommend.TrendingEntry{
			{Rank: 1, Item: recommend.Item{ID: "m1", Title: "Heat"}, Stats: recommend.TrendingStats{WatchCount: 3, AvgCompletion: 66.6667, TotalProgress: 12000}},
			{Rank: 2, Item: recommend.Item{ID: "m2", Title: "Thief"}, Stats: recommend.TrendingStats{WatchCount: 1, AvgCompletion: 12.4}},
		},
	}
	srv := newTestServer(t, &fakeRecommender{resp: resp}, nil)

	rec := srv.get(t, "/api/movies/trending/top10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body topTenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := topTenResponse{
		Success: true,
		Period:  "Last 7 days",
		Top10: []topTenEntry{
			{Rank: 1, Movie: recommend.Item{ID: "m1", Title: "Heat"}, Stats: topTenStats{WatchCount: 3, AvgCompletion: 67}},
			{Rank: 2, Movie: recommend.Item{ID: "m2", Title: "Thief"}, Stats: topTenStats{WatchCount: 1, AvgCompletion: 12}},
		},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestETag(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{resp: sampleResponse()}, nil)

	first := srv.get(t, "/api/recommendations/similar/m1", "")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on 200 response")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/similar/m1", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	healthy := ReadinessCheck{Name: "store", Ping: func(context.Context) error { return nil }}
	broken := ReadinessCheck{Name: "cache", Ping: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("live", func(t *testing.T) {
		srv := newTestServer(t, &fakeRecommender{}, nil, broken)
		rec := srv.get(t, "/api/health/live", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := decodeBody(t, rec)["status"]; got != "alive" {
			t.Errorf("status = %v, want alive", got)
		}
	})

	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(t, &fakeRecommender{}, nil, healthy)
		rec := srv.get(t, "/api/health/ready", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != true || body["status"] != "ready" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(t, &fakeRecommender{}, nil, healthy, broken)
		rec := srv.get(t, "/api/health/ready", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		body := decodeBody(t, rec)
		checks, _ := body["checks"].(map[string]any)
		if checks["store"] != "ok" || checks["cache"] != "connection refused" {
			t.Errorf("checks = %v", checks)
		}
	})
}

func TestRouting(t *testing.T) {
	srv := newTestServer(t, &fakeRecommender{}, nil)

	rec := srv.get(t, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Route not found" {
		t.Errorf("message = %v", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/trending", nil)
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", w.Code)
	}

	if rec := srv.get(t, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", rec.Code)
	}

	rec = srv.get(t, "/api/health/live", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response has no X-Request-ID")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	srv := newTestServer(t, &fakeRecommender{}, NewChiMiddleware(cfg))

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("ip"))
	for i := 0; i < 2; i++ {
		if rec := srv.get(t, "/api/recommendations/trending", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
	rec := srv.get(t, "/api/recommendations/trending", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != auth.MsgTooManyRequests {
		t.Errorf("message = %v, want %q", got, auth.MsgTooManyRequests)
	}
	if got := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("ip")) - before; got != 1 {
		t.Errorf("ip rate limit hits increased by %v, want 1", got)
	}

	// health has its own bucket
	if rec := srv.get(t, "/api/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	srv := newTestServer(t, &fakeRecommender{}, NewChiMiddleware(cfg))

	for i := 0; i < 5; i++ {
		if rec := srv.get(t, "/api/recommendations/trending", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}
