// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CompletedThreshold is the completion percentage at which a watch counts as finished.
const CompletedThreshold = 90.0

// Item is a catalog entry as seen by the recommendation engine.
// Stores normalize records before handing them over: tags are trimmed,
// empty tags are dropped and ratings are clamped to [0, 10].
type Item struct {
	// ID is the catalog identifier.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Plot is the short synopsis.
	Plot string `json:"plot,omitempty"`

	// Poster is the poster image URL.
	Poster string `json:"poster,omitempty"`

	// Rated is the content rating (PG-13, R, ...).
	Rated string `json:"rated,omitempty"`

	// Genres are the genre tags. Order carries no meaning.
	Genres []string `json:"genres"`

	// Cast lists performers in billing order.
	Cast []string `json:"cast,omitempty"`

	// Directors lists the directors.
	Directors []string `json:"directors,omitempty"`

	// Year is the release year.
	Year int `json:"year,omitempty"`

	// Runtime is the running time in minutes.
	Runtime int `json:"runtime,omitempty"`

	// Rating is the aggregate rating on a 0-10 scale.
	Rating float64 `json:"rating"`

	// Votes is the number of votes behind Rating.
	Votes int `json:"votes"`

	// IMDbID is the external IMDb identifier, if known.
	IMDbID string `json:"imdbId,omitempty"`
}

// HasAttributes reports whether the item carries any genre, director or cast entry.
func (it *Item) HasAttributes() bool {
	return len(it.Genres) > 0 || len(it.Directors) > 0 || len(it.Cast) > 0
}

// ActivityEntry is one watch event for a (user, item) pair.
type ActivityEntry struct {
	UserID    string    `json:"userId"`
	ItemID    string    `json:"itemId"`
	WatchedAt time.Time `json:"watchedAt"`

	// Progress is the number of seconds watched.
	Progress float64 `json:"progress"`

	// Duration is the total length in seconds.
	Duration float64 `json:"duration"`
}

// CompletionPercent returns how much of the item was watched, in [0, 100].
func (a *ActivityEntry) CompletionPercent() float64 {
	if a.Duration <= 0 || a.Progress <= 0 {
		return 0
	}
	pct := a.Progress / a.Duration * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Completed reports whether the entry reached CompletedThreshold.
func (a *ActivityEntry) Completed() bool {
	return a.CompletionPercent() >= CompletedThreshold
}

// Profile bundles the three user signals the scorer consumes.
type Profile struct {
	UserID      string
	Activity    []ActivityEntry
	Watchlist   []string
	Preferences []string
}

// IsEmpty reports whether the profile carries no signal at all.
func (p *Profile) IsEmpty() bool {
	return len(p.Activity) == 0 && len(p.Watchlist) == 0 && len(p.Preferences) == 0
}

// SeenIDs returns the identifiers of every watched or watchlisted item.
func (p *Profile) SeenIDs() map[string]struct{} {
	seen := make(map[string]struct{}, len(p.Activity)+len(p.Watchlist))
	for i := range p.Activity {
		seen[p.Activity[i].ItemID] = struct{}{}
	}
	for _, id := range p.Watchlist {
		seen[id] = struct{}{}
	}
	return seen
}

// GenreWeight is one entry of a genre affinity map.
type GenreWeight struct {
	Genre  string  `json:"genre"`
	Weight float64 `json:"weight"`
}

// Recommendation is a ranked item with the reason it was chosen.
type Recommendation struct {
	Item
	Rank int `json:"rank"`
}

// TrendingStats carries the aggregate numbers for one trending item.
type TrendingStats struct {
	WatchCount    int     `json:"watchCount"`
	AvgCompletion float64 `json:"avgCompletion"`
	TotalProgress float64 `json:"totalProgress"`
}

// TrendingEntry is a catalog item with its activity aggregate.
type TrendingEntry struct {
	Rank  int           `json:"rank"`
	Item  Item          `json:"movie"`
	Stats TrendingStats `json:"stats"`
}

// RoundedCompletion returns AvgCompletion rounded to a whole percentage.
func (s TrendingStats) RoundedCompletion() int {
	return int(math.Round(s.AvgCompletion))
}

// Mode selects the recommendation strategy.
type Mode int

const (
	// ModePersonalized ranks catalog items in the user's strongest genres.
	ModePersonalized Mode = iota

	// ModeSimilar ranks items resembling a reference item.
	ModeSimilar

	// ModeTrending ranks items by recent watch volume.
	ModeTrending

	// ModeBecauseYouWatched ranks items resembling something the user watched.
	ModeBecauseYouWatched

	// ModeTopPicks is personalized with a higher quality floor.
	ModeTopPicks
)

var modeNames = [...]string{
	ModePersonalized:      "personalized",
	ModeSimilar:           "similar",
	ModeTrending:          "trending",
	ModeBecauseYouWatched: "because-you-watched",
	ModeTopPicks:          "top-picks",
}

// String returns the mode name used in routes and logs.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// MarshalText encodes the mode by name, so cached responses stay readable
// and survive a reordering of the constants.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidRequest, int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText decodes a mode name written by MarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode resolves a mode from its name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
}

// Request describes a single recommendation call.
type Request struct {
	// Mode selects the strategy.
	Mode Mode

	// UserID is required for personalized, because-you-watched and top-picks.
	UserID string

	// ItemID is the reference item for similar and because-you-watched.
	ItemID string

	// Limit overrides the trending size. Zero keeps the default; values
	// above the configured maximum are clamped.
	Limit int

	// AllTime selects the unwindowed trending variant.
	AllTime bool

	// RequestID correlates logs. Generated when empty.
	RequestID string
}

// Insights is the auxiliary block returned with top picks.
type Insights struct {
	// PreferredViewingTime is the rounded mean hour of day (UTC) the user watches.
	// Nil when the user has no history.
	PreferredViewingTime *int `json:"preferredViewingTime"`

	// TotalWatched is the number of activity entries.
	TotalWatched int `json:"totalWatched"`

	// TotalCompleted counts the entries that reached CompletedThreshold.
	TotalCompleted int `json:"totalCompleted"`

	// CandidatesConsidered is the number of catalog items examined.
	CandidatesConsidered int `json:"candidatesConsidered"`
}

// Response is the assembled result of a recommendation call.
type Response struct {
	Mode            Mode             `json:"mode"`
	Recommendations []Recommendation `json:"recommendations"`
	Reason          string           `json:"reason,omitempty"`
	TopGenres       []string         `json:"topGenres,omitempty"`
	BasedOn         string           `json:"basedOn,omitempty"`
	Insights        *Insights        `json:"insights,omitempty"`

	// Trending carries the activity aggregate behind trending results.
	Trending []TrendingEntry `json:"trending,omitempty"`

	// Period describes the trending window, e.g. "Last 7 days".
	Period string `json:"period,omitempty"`

	// Fallback is set when the popularity ordering replaced personalization.
	Fallback bool `json:"fallback,omitempty"`

	// Dropped counts activity aggregates whose item no longer resolves.
	Dropped int `json:"dropped,omitempty"`
}

// Items returns the bare catalog items in rank order.
func (r *Response) Items() []Item {
	items := make([]Item, len(r.Recommendations))
	for i := range r.Recommendations {
		items[i] = r.Recommendations[i].Item
	}
	return items
}

// ranked wraps items with 1-based ranks.
func ranked(items []Item) []Recommendation {
	recs := make([]Recommendation, len(items))
	for i := range items {
		recs[i] = Recommendation{Item: items[i], Rank: i + 1}
	}
	return recs
}
