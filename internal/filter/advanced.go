package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/tutorbase/faqsearch/internal/types"
)

// Apply runs every active advanced predicate over the results, in the
// order the UI documents them. Predicates are AND-combined; a result is
// dropped if it fails any one.
func (a Advanced) Apply(results []types.SearchResult, now time.Time) []types.SearchResult {
	filtered := results[:0]
	for _, r := range results {
		if a.allow(r.Item, now) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (a Advanced) allow(q *types.Question, now time.Time) bool {
	if len(a.Categories) > 0 && !matchCategories(q, a.Categories, a.CategoryLogic) {
		return false
	}
	if a.DateRange != nil && !a.allowDate(q, now) {
		return false
	}
	if len(a.IncludeTags) > 0 && !matchTags(q.Tags, a.IncludeTags, a.TagLogic) {
		return false
	}
	for _, tag := range a.ExcludeTags {
		if containsString(q.Tags, tag) {
			return false
		}
	}
	if a.MinViews > 0 {
		if q.Analytics == nil || q.Analytics.Views < a.MinViews {
			return false
		}
	}
	if a.MinRating > 0 {
		rating, ok := q.Analytics.Rating()
		if !ok || rating < a.MinRating {
			return false
		}
	}
	if a.MinHelpfulness > 0 {
		helpfulness, ok := q.Analytics.Helpfulness()
		if !ok || helpfulness < a.MinHelpfulness {
			return false
		}
	}
	if a.TrendingOnly {
		if q.Analytics == nil || !q.Analytics.Trending {
			return false
		}
	}
	if a.ContentLength != "" && a.ContentLength != LengthAny && !a.allowLength(q) {
		return false
	}
	if a.ReadingTime != nil {
		rt := q.EstimatedReadTime
		if a.ReadingTime.Min > 0 && rt < a.ReadingTime.Min {
			return false
		}
		if a.ReadingTime.Max > 0 && rt > a.ReadingTime.Max {
			return false
		}
	}
	if len(a.ClientSegments) > 0 && !matchSegments(q, a.ClientSegments) {
		return false
	}
	if a.JourneyStage != "" && a.JourneyStage != StageAny && !matchJourneyStage(q, a.JourneyStage) {
		return false
	}
	if a.PriorityRange != nil {
		p := q.EffectivePriority()
		if p < a.PriorityRange.Min || p > a.PriorityRange.Max {
			return false
		}
	}
	return true
}

func (a Advanced) allowDate(q *types.Question, now time.Time) bool {
	from, to := a.DateRange.Bounds(now)
	if from != nil && q.LastUpdated.Before(*from) {
		return false
	}
	if to != nil && q.LastUpdated.After(*to) {
		return false
	}
	return true
}

func (a Advanced) allowLength(q *types.Question) bool {
	words := q.WordCount()
	switch a.ContentLength {
	case LengthShort:
		return words < 200
	case LengthMedium:
		return words >= 200 && words <= 500
	case LengthLong:
		return words > 500
	}
	return true
}

func matchCategories(q *types.Question, categories []string, logic Logic) bool {
	if logic == LogicAnd {
		// A question owns exactly one category, so AND can only hold for
		// a single-element list.
		for _, cat := range categories {
			if q.Category != cat {
				return false
			}
		}
		return true
	}
	for _, cat := range categories {
		if q.Category == cat {
			return true
		}
	}
	return false
}

func matchTags(tags, wanted []string, logic Logic) bool {
	if logic == LogicAnd {
		for _, w := range wanted {
			if !containsString(tags, w) {
				return false
			}
		}
		return true
	}
	for _, w := range wanted {
		if containsString(tags, w) {
			return true
		}
	}
	return false
}

func matchSegments(q *types.Question, segments []types.Segment) bool {
	if q.ClientSegment == types.SegmentAll {
		return true
	}
	for _, s := range segments {
		if q.ClientSegment == s {
			return true
		}
	}
	return false
}

func matchJourneyStage(q *types.Question, stage JourneyStage) bool {
	switch stage {
	case StageAwareness:
		return containsString(q.Tags, "introduction") || strings.Contains(q.Category, "overview")
	case StageConsideration:
		return containsString(q.Tags, "comparison") || containsString(q.Tags, "options")
	case StageDecision:
		return containsString(q.Tags, "pricing") || containsString(q.Tags, "booking")
	case StageRetention:
		return containsString(q.Tags, "support") || containsString(q.Tags, "ongoing")
	}
	return true
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// Sort reorders results by the advanced sort directive. Relevance (or an
// empty directive) keeps the engine's ranking untouched. The natural
// direction of every comparator is descending; asc flips it.
func (a Advanced) Sort(results []types.SearchResult) {
	if a.SortBy == "" || a.SortBy == SortRelevance {
		return
	}

	compare := func(x, y *types.Question) int {
		switch a.SortBy {
		case SortDate:
			switch {
			case y.LastUpdated.After(x.LastUpdated):
				return -1
			case x.LastUpdated.After(y.LastUpdated):
				return 1
			}
			return 0
		case SortPopularity:
			return views(x) - views(y)
		case SortAlphabetical:
			return strings.Compare(x.Question, y.Question)
		case SortPriority:
			return x.EffectivePriority() - y.EffectivePriority()
		}
		return 0
	}

	asc := a.SortOrder == OrderAsc
	sort.SliceStable(results, func(i, j int) bool {
		c := compare(results[i].Item, results[j].Item)
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func views(q *types.Question) int {
	if q.Analytics == nil {
		return 0
	}
	return q.Analytics.Views
}

// Group is one bucket of grouped results in display order.
type Group struct {
	Key     string
	Results []types.SearchResult
}

// GroupResults buckets results by the group directive, preserving the
// result ordering inside each bucket and ordering buckets by first
// appearance.
func (a Advanced) GroupResults(results []types.SearchResult) []Group {
	if a.GroupBy == "" || a.GroupBy == GroupNone {
		return []Group{{Key: "", Results: results}}
	}

	keyFor := func(q *types.Question) string {
		switch a.GroupBy {
		case GroupCategory:
			return q.Category
		case GroupDifficulty:
			return string(q.Difficulty)
		case GroupPopularity:
			switch {
			case views(q) >= 1000:
				return "popular"
			case views(q) >= 100:
				return "active"
			}
			return "quiet"
		case GroupDate:
			if q.LastUpdated.IsZero() {
				return "undated"
			}
			return q.LastUpdated.Format("2006-01")
		}
		return ""
	}

	index := make(map[string]int)
	var groups []Group
	for _, r := range results {
		key := keyFor(r.Item)
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, Group{Key: key})
		}
		groups[gi].Results = append(groups[gi].Results, r)
	}
	return groups
}
