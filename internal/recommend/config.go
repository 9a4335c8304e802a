// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tunables for the recommendation engine.
type Config struct {
	// Weights defines how much each user signal contributes to genre affinity.
	Weights SignalWeights `json:"weights"`

	// TopGenres is how many genres the scorer hands to the candidate filter.
	TopGenres int `json:"top_genres"`

	// Personalized configures the personalized mode.
	Personalized CandidateConfig `json:"personalized"`

	// TopPicks configures the top-picks mode.
	TopPicks CandidateConfig `json:"top_picks"`

	// Similar configures the generic similar-items mode.
	Similar SimilarConfig `json:"similar"`

	// BecauseYouWatched configures the because-you-watched mode.
	BecauseYouWatched BecauseYouWatchedConfig `json:"because_you_watched"`

	// Trending configures the trending modes and the top 10 view.
	Trending TrendingConfig `json:"trending"`

	// Cache configures response caching for the non-personal modes.
	Cache CacheConfig `json:"cache"`

	// RequestTimeout bounds a single engine call. Zero disables the bound.
	RequestTimeout time.Duration `json:"request_timeout"`
}

// SignalWeights are the per-occurrence genre weights.
type SignalWeights struct {
	// Watched is added for each genre of each watched entry.
	Watched float64 `json:"watched"`

	// Watchlist is added for each genre of each watchlisted item.
	Watchlist float64 `json:"watchlist"`

	// Preference is added once for each declared favorite genre.
	Preference float64 `json:"preference"`
}

// CandidateConfig configures genre-driven candidate selection.
type CandidateConfig struct {
	MinRating float64 `json:"min_rating"`
	Limit     int     `json:"limit"`
}

// SimilarConfig configures the fixed-floor similarity operation.
type SimilarConfig struct {
	// MinRating is the absolute rating floor.
	MinRating float64 `json:"min_rating"`
	Limit     int     `json:"limit"`

	// CastDepth is how many leading cast members count as a match.
	CastDepth int `json:"cast_depth"`
}

// BecauseYouWatchedConfig configures the relative-floor similarity operation.
type BecauseYouWatchedConfig struct {
	// RatingSlack is subtracted from the reference rating to get the floor.
	RatingSlack float64 `json:"rating_slack"`
	Limit       int     `json:"limit"`
	CastDepth   int     `json:"cast_depth"`
}

// TrendingConfig configures activity aggregation.
type TrendingConfig struct {
	// Window is how far back windowed trending looks.
	Window time.Duration `json:"window"`

	// DefaultLimit applies when the request carries no limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps client-provided limits.
	MaxLimit int `json:"max_limit"`

	// TopTenLimit sizes the top 10 view.
	TopTenLimit int `json:"top_ten_limit"`
}

// CacheConfig configures response caching.
type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	TTL     time.Duration `json:"ttl"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: SignalWeights{
			Watched:    2,
			Watchlist:  1,
			Preference: 3,
		},
		TopGenres: 3,
		Personalized: CandidateConfig{
			MinRating: 7.0,
			Limit:     20,
		},
		TopPicks: CandidateConfig{
			MinRating: 8.0,
			Limit:     15,
		},
		Similar: SimilarConfig{
			MinRating: 6.0,
			Limit:     12,
			CastDepth: 3,
		},
		BecauseYouWatched: BecauseYouWatchedConfig{
			RatingSlack: 1.0,
			Limit:       10,
			CastDepth:   3,
		},
		Trending: TrendingConfig{
			Window:       7 * 24 * time.Hour,
			DefaultLimit: 10,
			MaxLimit:     50,
			TopTenLimit:  10,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Minute,
		},
		RequestTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Weights.Watched < 0 {
		return fmt.Errorf("weights.watched must be non-negative, got %f", c.Weights.Watched)
	}
	if c.Weights.Watchlist < 0 {
		return fmt.Errorf("weights.watchlist must be non-negative, got %f", c.Weights.Watchlist)
	}
	if c.Weights.Preference < 0 {
		return fmt.Errorf("weights.preference must be non-negative, got %f", c.Weights.Preference)
	}
	if c.TopGenres < 1 {
		return fmt.Errorf("top_genres must be positive, got %d", c.TopGenres)
	}

	if err := c.Personalized.validate("personalized"); err != nil {
		return err
	}
	if err := c.TopPicks.validate("top_picks"); err != nil {
		return err
	}

	if c.Similar.MinRating < 0 || c.Similar.MinRating > 10 {
		return fmt.Errorf("similar.min_rating must be in [0, 10], got %f", c.Similar.MinRating)
	}
	if c.Similar.Limit < 1 {
		return fmt.Errorf("similar.limit must be positive, got %d", c.Similar.Limit)
	}
	if c.Similar.CastDepth < 0 {
		return fmt.Errorf("similar.cast_depth must be non-negative, got %d", c.Similar.CastDepth)
	}

	if c.BecauseYouWatched.RatingSlack < 0 {
		return fmt.Errorf("because_you_watched.rating_slack must be non-negative, got %f", c.BecauseYouWatched.RatingSlack)
	}
	if c.BecauseYouWatched.Limit < 1 {
		return fmt.Errorf("because_you_watched.limit must be positive, got %d", c.BecauseYouWatched.Limit)
	}
	if c.BecauseYouWatched.CastDepth < 0 {
		return fmt.Errorf("because_you_watched.cast_depth must be non-negative, got %d", c.BecauseYouWatched.CastDepth)
	}

	if c.Trending.Window <= 0 {
		return fmt.Errorf("trending.window must be positive, got %v", c.Trending.Window)
	}
	if c.Trending.DefaultLimit < 1 {
		return fmt.Errorf("trending.default_limit must be positive, got %d", c.Trending.DefaultLimit)
	}
	if c.Trending.MaxLimit < c.Trending.DefaultLimit {
		return fmt.Errorf("trending.max_limit (%d) must be >= default_limit (%d)", c.Trending.MaxLimit, c.Trending.DefaultLimit)
	}
	if c.Trending.TopTenLimit < 1 {
		return fmt.Errorf("trending.top_ten_limit must be positive, got %d", c.Trending.TopTenLimit)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be non-negative, got %v", c.RequestTimeout)
	}

	return nil
}

func (cc CandidateConfig) validate(name string) error {
	if cc.MinRating < 0 || cc.MinRating > 10 {
		return fmt.Errorf("%s.min_rating must be in [0, 10], got %f", name, cc.MinRating)
	}
	if cc.Limit < 1 {
		return fmt.Errorf("%s.limit must be positive, got %d", name, cc.Limit)
	}
	return nil
}

// Clone returns a copy of the configuration. Config holds no reference types,
// so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
