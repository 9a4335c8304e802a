// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Reason strings returned to clients.
const (
	ReasonPopular        = "Popular movies"
	ReasonTopPicks       = "Handpicked for you"
	ReasonTrendingWindow = "Trending this week"
)

// loadProfile fetches the three user signals concurrently. The first failure
// cancels the others and is returned.
func (e *Engine) loadProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{UserID: userID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		activity, err := e.activity.GetUserActivity(gctx, userID)
		if err != nil {
			return storeErr("get user activity", err)
		}
		p.Activity = activity
		return nil
	})
	g.Go(func() error {
		watchlist, err := e.activity.GetWatchlist(gctx, userID)
		if err != nil {
			return storeErr("get watchlist", err)
		}
		p.Watchlist = watchlist
		return nil
	})
	g.Go(func() error {
		prefs, err := e.activity.GetPreferences(gctx, userID)
		if err != nil {
			return storeErr("get preferences", err)
		}
		p.Preferences = prefs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}

// profileLookup resolves the items a profile refers to.
func (e *Engine) profileLookup(ctx context.Context, p *Profile) (ItemLookup, error) {
	seen := p.SeenIDs()
	if len(seen) == 0 {
		return lookupFrom(nil), nil
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	items, err := e.catalog.QueryItems(ctx, ItemQuery{IDs: ids})
	if err != nil {
		return nil, storeErr("query profile items", err)
	}
	return lookupFrom(items), nil
}

// genreResult is the shared outcome of the two genre-driven modes.
type genreResult struct {
	profile    *Profile
	items      []Item
	topGenres  []string
	fallback   bool
	considered int
}

// byGenre runs scorer then filter, falling back to popularity when either
// step yields nothing.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) byGenre(ctx context.Context, req Request, cc CandidateConfig) (*genreResult, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}

	profile, err := e.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	exclude := profile.SeenIDs()
	res := &genreResult{profile: profile}

	var scored []GenreWeight
	if !profile.IsEmpty() {
		lookup, err := e.profileLookup(ctx, profile)
		if err != nil {
			return nil, err
		}
		scored = ScoreGenres(profile, lookup, e.config.Weights, e.config.TopGenres)
	}

	if len(scored) > 0 {
		res.topGenres = genreNames(scored)
		candidates, err := e.catalog.QueryItems(ctx, ItemQuery{Genres: res.topGenres, MinRating: cc.MinRating})
		if err != nil {
			return nil, storeErr("query candidates", err)
		}
		res.considered = len(candidates)
		res.items = FilterCandidates(candidates, exclude, res.topGenres, cc.MinRating, cc.Limit)
		if len(res.items) > 0 {
			return res, nil
		}
	}

	all, err := e.catalog.QueryItems(ctx, ItemQuery{})
	if err != nil {
		return nil, storeErr("query catalog", err)
	}
	res.fallback = true
	res.considered = len(all)
	res.items = PopularityFallback(all, exclude, cc.Limit)
	return res, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) personalized(ctx context.Context, req Request) (*Response, error) {
	res, err := e.byGenre(ctx, req, e.config.Personalized)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Mode:            ModePersonalized,
		Recommendations: ranked(res.items),
		TopGenres:       []string{},
		Fallback:        res.fallback,
	}
	if res.fallback {
		resp.Reason = ReasonPopular
		return resp, nil
	}
	resp.Reason = "Based on your interest in " + strings.Join(res.topGenres, ", ")
	resp.TopGenres = res.topGenres
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) topPicks(ctx context.Context, req Request) (*Response, error) {
	res, err := e.byGenre(ctx, req, e.config.TopPicks)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Mode:            ModeTopPicks,
		Recommendations: ranked(res.items),
		Reason:          ReasonTopPicks,
		TopGenres:       res.topGenres,
		Fallback:        res.fallback,
		Insights: &Insights{
			PreferredViewingTime: PreferredViewingHour(res.profile.Activity),
			TotalWatched:         len(res.profile.Activity),
			TotalCompleted:       completedCount(res.profile.Activity),
			CandidatesConsidered: res.considered,
		},
	}
	if res.fallback {
		resp.Reason = ReasonPopular
		resp.TopGenres = nil
	}
	return resp, nil
}

// PreferredViewingHour returns the rounded mean hour of day (UTC) across the
// activity, or nil when there is none.
func PreferredViewingHour(activity []ActivityEntry) *int {
	if len(activity) == 0 {
		return nil
	}
	var sum float64
	for i := range activity {
		sum += float64(activity[i].WatchedAt.UTC().Hour())
	}
	hour := int(math.Round(sum / float64(len(activity))))
	return &hour
}

func completedCount(activity []ActivityEntry) int {
	n := 0
	for i := range activity {
		if activity[i].Completed() {
			n++
		}
	}
	return n
}

// loadReference fetches the reference item, mapping absence to ErrNotFound.
func (e *Engine) loadReference(ctx context.Context, id string) (*Item, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidRequest)
	}
	ref, err := e.catalog.GetItem(ctx, id)
	if err != nil {
		return nil, storeErr("get item", err)
	}
	if ref == nil {
		return nil, fmt.Errorf("get item %s: %w", id, ErrNotFound)
	}
	return ref, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) similar(ctx context.Context, req Request) (*Response, error) {
	return e.cached(ctx, "similar:"+req.ItemID, func() (*Response, error) {
		ref, err := e.loadReference(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}

		floor := e.config.SimilarFloor()
		candidates, err := e.catalog.QueryItems(ctx, ItemQuery{MinRating: floor})
		if err != nil {
			return nil, storeErr("query similar candidates", err)
		}

		items := MatchSimilar(ref, candidates, MatchOptions{
			MinRating: floor,
			CastDepth: e.config.Similar.CastDepth,
			Limit:     e.config.Similar.Limit,
		})
		return &Response{
			Mode:            ModeSimilar,
			Recommendations: ranked(items),
			BasedOn:         ref.Title,
		}, nil
	})
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) becauseYouWatched(ctx context.Context, req Request) (*Response, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}

	ref, err := e.loadReference(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	profile, err := e.loadProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	floor := e.config.BecauseYouWatchedFloor(ref)
	candidates, err := e.catalog.QueryItems(ctx, ItemQuery{MinRating: floor})
	if err != nil {
		return nil, storeErr("query similar candidates", err)
	}

	items := MatchSimilar(ref, candidates, MatchOptions{
		MinRating: floor,
		CastDepth: e.config.BecauseYouWatched.CastDepth,
		Exclude:   profile.SeenIDs(),
		Limit:     e.config.BecauseYouWatched.Limit,
	})
	return &Response{
		Mode:            ModeBecauseYouWatched,
		Recommendations: ranked(items),
		Reason:          "Because you watched " + ref.Title,
		BasedOn:         ref.Title,
	}, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) trendingMode(ctx context.Context, req Request) (*Response, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRequest, req.Limit)
	}
	limit := req.Limit
	if limit == 0 {
		limit = e.config.Trending.DefaultLimit
	}
	var window time.Duration
	if !req.AllTime {
		window = e.config.Trending.Window
	}
	return e.trendingResponse(ctx, window, limit)
}

// TopTen returns the windowed trending view used by the movie listing.
func (e *Engine) TopTen(ctx context.Context) (*Response, error) {
	start := time.Now()
	resp, err := e.trendingResponse(ctx, e.config.Trending.Window, e.config.Trending.TopTenLimit)
	e.observer.ObserveRequest("top10", outcomeOf(err), time.Since(start))
	if err != nil {
		e.logger.Error().Err(err).Msg("top 10 aggregation failed")
		return nil, err
	}
	return resp, nil
}

// trendingResponse aggregates activity, sharing the work between concurrent
// callers asking for the same window and limit.
func (e *Engine) trendingResponse(ctx context.Context, window time.Duration, limit int) (*Response, error) {
	key := fmt.Sprintf("trending:%d:%d", int64(window.Seconds()), limit)

	return e.cached(ctx, key, func() (*Response, error) {
		return e.sharedTrending(ctx, key, window, limit)
	})
}

// sharedTrending joins (or starts) the aggregation for key. The shared call
// runs detached from any one caller's cancellation, bounded by the request
// timeout; each caller stops waiting when its own context ends.
func (e *Engine) sharedTrending(ctx context.Context, key string, window time.Duration, limit int) (*Response, error) {
	ch := e.trending.DoChan(key, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		if e.config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, e.config.RequestTimeout)
			defer cancel()
		}
		return e.computeTrending(flightCtx, window, limit)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Response), nil
	}
}

func (e *Engine) computeTrending(ctx context.Context, window time.Duration, limit int) (*Response, error) {
	now := e.now()
	var since time.Time
	if window > 0 {
		since = now.Add(-window)
	}

	activity, err := e.activity.ListActivity(ctx, since)
	if err != nil {
		return nil, storeErr("list activity", err)
	}

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range activity {
		id := activity[i].ItemID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var items []Item
	if len(ids) > 0 {
		items, err = e.catalog.QueryItems(ctx, ItemQuery{IDs: ids})
		if err != nil {
			return nil, storeErr("query trending items", err)
		}
	}

	result := AggregateTrending(activity, lookupFrom(items), window, now, limit)
	if result.Dropped > 0 {
		e.observer.ObserveDropped(result.Dropped)
		e.logger.Debug().Int("dropped", result.Dropped).Msg("trending items missing from catalog")
	}

	resp := &Response{
		Mode:            ModeTrending,
		Recommendations: ranked(result.Items()),
		Trending:        result.Entries,
		Dropped:         result.Dropped,
	}
	if window > 0 {
		resp.Reason = ReasonTrendingWindow
		resp.Period = fmt.Sprintf("Last %d days", int(window.Hours()/24))
	}
	return resp, nil
}
