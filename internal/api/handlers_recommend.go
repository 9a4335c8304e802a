// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

var (
	personalizedMessages = errorMessages{NotFound: msgUserNotFound, Failure: "Failed to get recommendations"}
	similarMessages      = errorMessages{NotFound: msgMovieNotFound, Failure: "Failed to get similar movies"}
	trendingMessages     = errorMessages{NotFound: msgMovieNotFound, Failure: "Failed to get trending movies"}
	becauseMessages      = errorMessages{NotFound: msgMovieNotFound, Failure: "Failed to get recommendations"}
	topPicksMessages     = errorMessages{NotFound: msgUserNotFound, Failure: "Failed to get top picks"}
	topTenMessages       = errorMessages{NotFound: msgMovieNotFound, Failure: "Failed to fetch top 10 movies"}
)

// recommendationsResponse is the success body shared by the recommendation
// modes. Empty optional fields are omitted so each mode keeps its own shape.
type recommendationsResponse struct {
	Success         bool                       `json:"success"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Reason          string                     `json:"reason,omitempty"`
	TopGenres       []string                   `json:"topGenres,omitempty"`
	BasedOn         string                     `json:"basedOn,omitempty"`
	Insights        *recommend.Insights        `json:"insights,omitempty"`
}

type topTenStats struct {
	WatchCount    int `json:"watchCount"`
	AvgCompletion int `json:"avgCompletion"`
}

type topTenEntry struct {
	Rank  int            `json:"rank"`
	Movie recommend.Item `json:"movie"`
	Stats topTenStats    `json:"stats"`
}

type topTenResponse struct {
	Success bool          `json:"success"`
	Top10   []topTenEntry `json:"top10"`
	Period  string        `json:"period"`
}

// trendingQuery is the validated query string of the trending endpoint.
type trendingQuery struct {
	Limit  *int   `query:"limit" validate:"omitempty,gte=1,lte=50"`
	Window string `query:"window" validate:"omitempty,oneof=all week"`
}

type itemParam struct {
	ItemID string `query:"itemId" validate:"catalogid"`
}

// Personalized handles GET /api/recommendations/personalized
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, recommend.Request{Mode: recommend.ModePersonalized}, personalizedMessages)
}

// TopPicks handles GET /api/recommendations/top-picks
func (h *Handler) TopPicks(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, recommend.Request{Mode: recommend.ModeTopPicks}, topPicksMessages)
}

// Similar handles GET /api/recommendations/similar/{itemId}
// No authentication; the caller's history is not consulted.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	h.recommend(w, r, recommend.Request{Mode: recommend.ModeSimilar, ItemID: itemID}, similarMessages)
}

// BecauseYouWatched handles GET /api/recommendations/because-you-watched/{itemId}
func (h *Handler) BecauseYouWatched(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	h.recommend(w, r, recommend.Request{Mode: recommend.ModeBecauseYouWatched, ItemID: itemID}, becauseMessages)
}

// Trending handles GET /api/recommendations/trending?limit=&window=
//
// limit is 1..50 (default 10). window=all selects the all-time ranking by
// watch count only.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	q := trendingQuery{Window: r.URL.Query().Get("window")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "limit must be a number")
			return
		}
		q.Limit = &limit
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondError(w, r, http.StatusBadRequest, verr.Error())
		return
	}

	req := recommend.Request{Mode: recommend.ModeTrending, AllTime: q.Window == "all"}
	if q.Limit != nil {
		req.Limit = *q.Limit
	}
	h.recommend(w, r, req, trendingMessages)
}

// TopTen handles GET /api/movies/trending/top10
func (h *Handler) TopTen(w http.ResponseWriter, r *http.Request) {
	resp, err := h.engine.TopTen(r.Context())
	if err != nil {
		writeEngineError(w, r, err, topTenMessages)
		return
	}

	entries := make([]topTenEntry, len(resp.Trending))
	for i, e := range resp.Trending {
		entries[i] = topTenEntry{
			Rank:  e.Rank,
			Movie: e.Item,
			Stats: topTenStats{
				WatchCount:    e.Stats.WatchCount,
				AvgCompletion: e.Stats.RoundedCompletion(),
			},
		}
	}

	respondJSON(w, r, http.StatusOK, topTenResponse{
		Success: true,
		Top10:   entries,
		Period:  resp.Period,
	})
}

// recommend fills in the caller and request id, runs the engine and writes
// the result.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, req recommend.Request, msgs errorMessages) {
	ctx := r.Context()
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		req.UserID = userID
	}
	req.RequestID = middleware.GetRequestID(ctx)

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		writeEngineError(w, r, err, msgs)
		return
	}

	body := recommendationsResponse{
		Success:         true,
		Recommendations: resp.Recommendations,
		Reason:          resp.Reason,
		TopGenres:       resp.TopGenres,
		BasedOn:         resp.BasedOn,
		Insights:        resp.Insights,
	}
	if body.Recommendations == nil {
		body.Recommendations = []recommend.Recommendation{}
	}
	respondJSON(w, r, http.StatusOK, body)
}

// itemIDParam reads and validates the {itemId} route parameter, writing a
// 400 when it is malformed.
func itemIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := itemParam{ItemID: chi.URLParam(r, "itemId")}
	if verr := validation.ValidateStruct(&p); verr != nil {
		respondError(w, r, http.StatusBadRequest, verr.Error())
		return "", false
	}
	return p.ItemID, true
}
