package analytics

import (
	"fmt"
	"sort"

	"iganalytics/pkg/instagram"
)

// Item is one media object together with what enrichment found out about it
type Item struct {
	// Number is the 1-based position in the listing
	Number int
	Media  instagram.Media

	Insights    instagram.InsightSet
	InsightsErr error

	Comments    []instagram.Comment
	CommentsErr error
}

// HasInsights reports whether the insights call succeeded and returned at
// least one metric. Carousels often return none.
func (it *Item) HasInsights() bool {
	return it.InsightsErr == nil && len(it.Insights) > 0
}

// Metric returns an insight value, zero when insights are missing
func (it *Item) Metric(name string) float64 {
	if !it.HasInsights() {
		return 0
	}
	return it.Insights.Value(name)
}

// EngagementRate combines the raw like and comment counts with saved and
// shares from insights
func (it *Item) EngagementRate() (float64, bool) {
	if !it.HasInsights() {
		return 0, false
	}
	return EngagementRate(
		float64(it.Media.LikeCount),
		float64(it.Media.CommentsCount),
		it.Metric(instagram.MetricSaved),
		it.Metric(instagram.MetricShares),
		it.Metric(instagram.MetricReach),
	)
}

// Completion returns the estimated duration and completion rate of a reel
func (it *Item) Completion() (estimatedDuration, rate float64, ok bool) {
	if !it.Media.IsReel() || !it.HasInsights() {
		return 0, 0, false
	}
	return Completion(
		it.Metric(instagram.MetricViews),
		it.Metric(instagram.MetricReelsAvgTime),
		it.Metric(instagram.MetricReelsTotalTime),
	)
}

// InsightsDiagnostic is the line printed for a failed insights call, empty
// when the call succeeded
func (it *Item) InsightsDiagnostic() string {
	if it.InsightsErr == nil {
		return ""
	}
	return fmt.Sprintf("Insights error for %s: %s", it.Media.ID, StatusText(it.InsightsErr))
}

// KindCount is the number of posts of one display kind
type KindCount struct {
	Kind  string
	Count int
}

// Totals are the sums over one run
type Totals struct {
	Posts    int
	Kinds    map[string]int
	Likes    int
	Comments int
	Reach    float64
	Saved    float64
	Shares   float64
	Views    float64
}

// Add folds one item into the totals. Raw counts always add; insight
// metrics only when insights were returned, views only for videos.
func (t *Totals) Add(it *Item) {
	if t.Kinds == nil {
		t.Kinds = make(map[string]int)
	}
	t.Posts++
	t.Kinds[it.Media.DisplayKind()]++
	t.Likes += it.Media.LikeCount
	t.Comments += it.Media.CommentsCount

	if !it.HasInsights() {
		return
	}
	t.Reach += it.Metric(instagram.MetricReach)
	t.Saved += it.Metric(instagram.MetricSaved)
	t.Shares += it.Metric(instagram.MetricShares)
	if it.Media.IsVideo() {
		t.Views += it.Metric(instagram.MetricViews)
	}
}

// KindCounts lists the non-zero kinds, known kinds first in their fixed
// order, then anything else the API returned sorted by name
func (t Totals) KindCounts() []KindCount {
	var out []KindCount
	known := make(map[string]bool, len(instagram.DisplayKinds))
	for _, kind := range instagram.DisplayKinds {
		known[kind] = true
		if n := t.Kinds[kind]; n > 0 {
			out = append(out, KindCount{Kind: kind, Count: n})
		}
	}

	var extra []string
	for kind, n := range t.Kinds {
		if !known[kind] && n > 0 {
			extra = append(extra, kind)
		}
	}
	sort.Strings(extra)
	for _, kind := range extra {
		out = append(out, KindCount{Kind: kind, Count: t.Kinds[kind]})
	}
	return out
}

// PerPost divides sum by the number of posts. ok is false for an empty run.
func (t Totals) PerPost(sum float64) (float64, bool) {
	if t.Posts == 0 {
		return 0, false
	}
	return sum / float64(t.Posts), true
}

// Report is the outcome of one analytics run
type Report struct {
	Account instagram.Account
	Items   []*Item
	Totals  Totals
	// Pages is how many media pages were read
	Pages int
	// HasMore is true when the listing stopped before the last page
	HasMore bool
}
