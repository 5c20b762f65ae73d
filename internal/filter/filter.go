// Package filter implements the two-layer result filtering model: Basic
// filters are exact-match predicates the engine facade understands;
// Advanced filters are the richer client-side layer applied after the
// engine returns. The two sets are explicit, disjoint-but-composable
// structs so merging is typed rather than a loose field spread.
package filter

import (
	"time"

	"github.com/tutorbase/faqsearch/internal/types"
)

// Logic selects how multi-value predicates combine.
type Logic string

const (
	LogicOr  Logic = "OR"
	LogicAnd Logic = "AND"
)

// Basic is the filter set the engine facade applies between fuzzy
// matching and boost application. All predicates are optional and
// AND-combined.
type Basic struct {
	Category      string
	Difficulty    types.Difficulty
	ClientSegment types.Segment

	// Featured is tri-state: nil means "don't care".
	Featured *bool

	// Limit caps returned results; zero falls back to the configured
	// engine maximum.
	Limit int
}

// Allow reports whether a question passes every active predicate.
// A question with the universal "all" segment passes any segment filter.
func (b Basic) Allow(q *types.Question) bool {
	if b.Category != "" && q.Category != b.Category {
		return false
	}
	if b.Difficulty != "" && q.Difficulty != b.Difficulty {
		return false
	}
	if b.ClientSegment != "" &&
		q.ClientSegment != b.ClientSegment &&
		q.ClientSegment != types.SegmentAll {
		return false
	}
	if b.Featured != nil && q.Featured != *b.Featured {
		return false
	}
	return true
}

// Apply drops results whose question fails any active predicate.
func (b Basic) Apply(results []types.SearchResult) []types.SearchResult {
	filtered := results[:0]
	for _, r := range results {
		if b.Allow(r.Item) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// DatePreset names a relative date window.
type DatePreset string

const (
	PresetToday   DatePreset = "today"
	PresetWeek    DatePreset = "week"
	PresetMonth   DatePreset = "month"
	PresetQuarter DatePreset = "quarter"
	PresetYear    DatePreset = "year"
)

// DateRange bounds results by last-updated time, either explicitly or
// through a named preset. A preset takes precedence over explicit bounds.
type DateRange struct {
	From   *time.Time
	To     *time.Time
	Preset DatePreset
}

// Bounds resolves the range against the given current time.
func (d DateRange) Bounds(now time.Time) (from, to *time.Time) {
	if d.Preset == "" {
		return d.From, d.To
	}
	var f time.Time
	switch d.Preset {
	case PresetToday:
		f = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PresetWeek:
		f = now.Add(-7 * 24 * time.Hour)
	case PresetMonth:
		f = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PresetQuarter:
		quarter := (int(now.Month()) - 1) / 3
		f = time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, now.Location())
	case PresetYear:
		f = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return d.From, d.To
	}
	return &f, nil
}

// ContentLength buckets questions by combined question+answer word count.
type ContentLength string

const (
	LengthShort  ContentLength = "short"  // under 200 words
	LengthMedium ContentLength = "medium" // 200-500 words
	LengthLong   ContentLength = "long"   // over 500 words
	LengthAny    ContentLength = "any"
)

// JourneyStage is the inferred position in the customer journey,
// heuristically derived from tags and category.
type JourneyStage string

const (
	StageAwareness     JourneyStage = "awareness"
	StageConsideration JourneyStage = "consideration"
	StageDecision      JourneyStage = "decision"
	StageRetention     JourneyStage = "retention"
	StageAny           JourneyStage = "any"
)

// SortBy selects the result ordering; relevance keeps the engine's
// boosted ranking.
type SortBy string

const (
	SortRelevance    SortBy = "relevance"
	SortDate         SortBy = "date"
	SortPopularity   SortBy = "popularity"
	SortAlphabetical SortBy = "alphabetical"
	SortPriority     SortBy = "priority"
)

// SortOrder is the explicit sort direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// GroupBy selects an optional grouping dimension for display.
type GroupBy string

const (
	GroupNone       GroupBy = "none"
	GroupCategory   GroupBy = "category"
	GroupDifficulty GroupBy = "difficulty"
	GroupPopularity GroupBy = "popularity"
	GroupDate       GroupBy = "date"
)

// MinMax bounds an integer attribute; zero means unbounded on that side.
type MinMax struct {
	Min int
	Max int
}

// Advanced is the client-side filter layer the engine facade does not
// understand. It is a strict superset over Basic: the session projects
// the basic subset for the engine and applies the rest itself.
type Advanced struct {
	Categories    []string
	CategoryLogic Logic

	DateRange *DateRange

	IncludeTags []string
	ExcludeTags []string
	TagLogic    Logic

	MinViews       int
	MinRating      float64
	MinHelpfulness float64
	TrendingOnly   bool

	ContentLength    ContentLength
	AnswerComplexity types.Difficulty
	ReadingTime      *MinMax

	ClientSegments []types.Segment
	JourneyStage   JourneyStage
	FeaturedOnly   bool
	PriorityRange  *MinMax

	GroupBy   GroupBy
	SortBy    SortBy
	SortOrder SortOrder
}

// Criteria is the merged filter state a session holds: both layers
// composed, never a loose spread.
type Criteria struct {
	Basic
	Advanced
}

// BasicSubset projects the criteria down to what the engine facade
// understands, applying the advanced fallbacks: answer complexity stands
// in for difficulty, the first advanced segment for the segment filter,
// featured-only for the featured flag.
func (c Criteria) BasicSubset() Basic {
	b := c.Basic
	if b.Difficulty == "" && c.AnswerComplexity != "" {
		b.Difficulty = c.AnswerComplexity
	}
	if b.ClientSegment == "" && len(c.ClientSegments) > 0 {
		b.ClientSegment = c.ClientSegments[0]
	}
	if b.Featured == nil && c.FeaturedOnly {
		t := true
		b.Featured = &t
	}
	return b
}

// Merge layers every non-zero field of patch over base and returns the
// result. Zero values in patch leave base untouched, mirroring how
// partial filter updates behave in the UI.
func Merge(base, patch Criteria) Criteria {
	out := base

	if patch.Basic.Category != "" {
		out.Basic.Category = patch.Basic.Category
	}
	if patch.Basic.Difficulty != "" {
		out.Basic.Difficulty = patch.Basic.Difficulty
	}
	if patch.Basic.ClientSegment != "" {
		out.Basic.ClientSegment = patch.Basic.ClientSegment
	}
	if patch.Basic.Featured != nil {
		out.Basic.Featured = patch.Basic.Featured
	}
	if patch.Basic.Limit != 0 {
		out.Basic.Limit = patch.Basic.Limit
	}

	if patch.Categories != nil {
		out.Categories = patch.Categories
	}
	if patch.CategoryLogic != "" {
		out.CategoryLogic = patch.CategoryLogic
	}
	if patch.DateRange != nil {
		out.DateRange = patch.DateRange
	}
	if patch.IncludeTags != nil {
		out.IncludeTags = patch.IncludeTags
	}
	if patch.ExcludeTags != nil {
		out.ExcludeTags = patch.ExcludeTags
	}
	if patch.TagLogic != "" {
		out.TagLogic = patch.TagLogic
	}
	if patch.MinViews != 0 {
		out.MinViews = patch.MinViews
	}
	if patch.MinRating != 0 {
		out.MinRating = patch.MinRating
	}
	if patch.MinHelpfulness != 0 {
		out.MinHelpfulness = patch.MinHelpfulness
	}
	if patch.TrendingOnly {
		out.TrendingOnly = true
	}
	if patch.ContentLength != "" {
		out.ContentLength = patch.ContentLength
	}
	if patch.AnswerComplexity != "" {
		out.AnswerComplexity = patch.AnswerComplexity
	}
	if patch.ReadingTime != nil {
		out.ReadingTime = patch.ReadingTime
	}
	if patch.ClientSegments != nil {
		out.ClientSegments = patch.ClientSegments
	}
	if patch.JourneyStage != "" {
		out.JourneyStage = patch.JourneyStage
	}
	if patch.FeaturedOnly {
		out.FeaturedOnly = true
	}
	if patch.PriorityRange != nil {
		out.PriorityRange = patch.PriorityRange
	}
	if patch.GroupBy != "" {
		out.GroupBy = patch.GroupBy
	}
	if patch.SortBy != "" {
		out.SortBy = patch.SortBy
	}
	if patch.SortOrder != "" {
		out.SortOrder = patch.SortOrder
	}

	return out
}
