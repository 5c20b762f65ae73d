package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorbase/faqsearch/internal/types"
)

var advNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func resultsOf(questions ...*types.Question) []types.SearchResult {
	out := make([]types.SearchResult, len(questions))
	for i, q := range questions {
		out[i] = types.SearchResult{Item: q}
	}
	return out
}

func ids(results []types.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ID
	}
	return out
}

func TestAdvancedCategoryLogic(t *testing.T) {
	pricing := &types.Question{ID: "p", Category: "pricing"}
	subjects := &types.Question{ID: "s", Category: "subjects"}

	or := Advanced{Categories: []string{"pricing", "subjects"}, CategoryLogic: LogicOr}
	got := or.Apply(resultsOf(pricing, subjects), advNow)
	assert.Equal(t, []string{"p", "s"}, ids(got))

	// AND over multiple categories can never hold for single-category questions.
	and := Advanced{Categories: []string{"pricing", "subjects"}, CategoryLogic: LogicAnd}
	assert.Empty(t, and.Apply(resultsOf(pricing, subjects), advNow))

	single := Advanced{Categories: []string{"pricing"}, CategoryLogic: LogicAnd}
	assert.Equal(t, []string{"p"}, ids(single.Apply(resultsOf(pricing, subjects), advNow)))
}

func TestAdvancedDatePresetExcludesStale(t *testing.T) {
	fresh := &types.Question{ID: "fresh", LastUpdated: advNow.AddDate(0, 0, -3)}
	stale := &types.Question{ID: "stale", LastUpdated: advNow.AddDate(0, 0, -400)}

	a := Advanced{DateRange: &DateRange{Preset: PresetMonth}}
	got := a.Apply(resultsOf(fresh, stale), advNow)
	assert.Equal(t, []string{"fresh"}, ids(got))
}

func TestAdvancedTagFiltering(t *testing.T) {
	both := &types.Question{ID: "both", Tags: []string{"fees", "booking"}}
	one := &types.Question{ID: "one", Tags: []string{"fees"}}
	neither := &types.Question{ID: "neither", Tags: []string{"misc"}}

	or := Advanced{IncludeTags: []string{"fees", "booking"}, TagLogic: LogicOr}
	assert.Equal(t, []string{"both", "one"}, ids(or.Apply(resultsOf(both, one, neither), advNow)))

	and := Advanced{IncludeTags: []string{"fees", "booking"}, TagLogic: LogicAnd}
	assert.Equal(t, []string{"both"}, ids(and.Apply(resultsOf(both, one, neither), advNow)))

	exclude := Advanced{ExcludeTags: []string{"misc"}}
	assert.Equal(t, []string{"both", "one"}, ids(exclude.Apply(resultsOf(both, one, neither), advNow)))
}

func TestAdvancedAnalyticsThresholds(t *testing.T) {
	popular := &types.Question{ID: "popular", Analytics: &types.Analytics{Views: 5000, Helpful: 90, NotHelpful: 10, Trending: true}}
	quiet := &types.Question{ID: "quiet", Analytics: &types.Analytics{Views: 50, Helpful: 1, NotHelpful: 9}}
	unmeasured := &types.Question{ID: "unmeasured"}

	views := Advanced{MinViews: 1000}
	assert.Equal(t, []string{"popular"}, ids(views.Apply(resultsOf(popular, quiet, unmeasured), advNow)))

	// 90/(90+10)*5 = 4.5; 1/(1+9)*5 = 0.5. No analytics means no rating.
	rating := Advanced{MinRating: 4.0}
	assert.Equal(t, []string{"popular"}, ids(rating.Apply(resultsOf(popular, quiet, unmeasured), advNow)))

	helpfulness := Advanced{MinHelpfulness: 80}
	assert.Equal(t, []string{"popular"}, ids(helpfulness.Apply(resultsOf(popular, quiet, unmeasured), advNow)))

	trending := Advanced{TrendingOnly: true}
	assert.Equal(t, []string{"popular"}, ids(trending.Apply(resultsOf(popular, quiet, unmeasured), advNow)))
}

func wordyQuestion(id string, words int) *types.Question {
	text := ""
	for i := 0; i < words; i++ {
		text += "word "
	}
	return &types.Question{ID: id, Answer: text}
}

func TestAdvancedContentLength(t *testing.T) {
	short := wordyQuestion("short", 50)
	medium := wordyQuestion("medium", 300)
	long := wordyQuestion("long", 700)

	assert.Equal(t, []string{"short"},
		ids(Advanced{ContentLength: LengthShort}.Apply(resultsOf(short, medium, long), advNow)))
	assert.Equal(t, []string{"medium"},
		ids(Advanced{ContentLength: LengthMedium}.Apply(resultsOf(short, medium, long), advNow)))
	assert.Equal(t, []string{"long"},
		ids(Advanced{ContentLength: LengthLong}.Apply(resultsOf(short, medium, long), advNow)))
	assert.Len(t,
		Advanced{ContentLength: LengthAny}.Apply(resultsOf(short, medium, long), advNow), 3)
}

func TestAdvancedReadingTime(t *testing.T) {
	quick := &types.Question{ID: "quick", EstimatedReadTime: 2}
	slow := &types.Question{ID: "slow", EstimatedReadTime: 12}

	a := Advanced{ReadingTime: &MinMax{Min: 1, Max: 5}}
	assert.Equal(t, []string{"quick"}, ids(a.Apply(resultsOf(quick, slow), advNow)))
}

func TestAdvancedSegments(t *testing.T) {
	oxbridge := &types.Question{ID: "ox", ClientSegment: types.SegmentOxbridgePrep}
	universal := &types.Question{ID: "all", ClientSegment: types.SegmentAll}
	corporate := &types.Question{ID: "corp", ClientSegment: types.SegmentEliteCorporate}

	a := Advanced{ClientSegments: []types.Segment{types.SegmentOxbridgePrep}}
	assert.Equal(t, []string{"ox", "all"}, ids(a.Apply(resultsOf(oxbridge, universal, corporate), advNow)))
}

func TestAdvancedJourneyStage(t *testing.T) {
	decision := &types.Question{ID: "decision", Tags: []string{"pricing"}}
	retention := &types.Question{ID: "retention", Tags: []string{"support"}}

	a := Advanced{JourneyStage: StageDecision}
	assert.Equal(t, []string{"decision"}, ids(a.Apply(resultsOf(decision, retention), advNow)))

	any := Advanced{JourneyStage: StageAny}
	assert.Len(t, any.Apply(resultsOf(decision, retention), advNow), 2)
}

func TestAdvancedPriorityRange(t *testing.T) {
	low := &types.Question{ID: "low", Priority: 2}
	high := &types.Question{ID: "high", Priority: 9}
	unset := &types.Question{ID: "unset"} // effective priority 5

	a := Advanced{PriorityRange: &MinMax{Min: 4, Max: 10}}
	assert.Equal(t, []string{"high", "unset"}, ids(a.Apply(resultsOf(low, high, unset), advNow)))
}

func TestSortAlphabeticalAscending(t *testing.T) {
	banana := &types.Question{ID: "b", Question: "Banana topic"}
	apple := &types.Question{ID: "a", Question: "Apple topic"}

	results := resultsOf(banana, apple)
	Advanced{SortBy: SortAlphabetical, SortOrder: OrderAsc}.Sort(results)
	assert.Equal(t, []string{"a", "b"}, ids(results))
}

func TestSortDateDefaultsDescending(t *testing.T) {
	older := &types.Question{ID: "older", LastUpdated: advNow.AddDate(0, -2, 0)}
	newer := &types.Question{ID: "newer", LastUpdated: advNow.AddDate(0, 0, -1)}

	results := resultsOf(older, newer)
	Advanced{SortBy: SortDate}.Sort(results)
	assert.Equal(t, []string{"newer", "older"}, ids(results))
}

func TestSortPopularity(t *testing.T) {
	popular := &types.Question{ID: "popular", Analytics: &types.Analytics{Views: 900}}
	quiet := &types.Question{ID: "quiet", Analytics: &types.Analytics{Views: 10}}
	unmeasured := &types.Question{ID: "unmeasured"}

	results := resultsOf(quiet, popular, unmeasured)
	Advanced{SortBy: SortPopularity}.Sort(results)
	assert.Equal(t, []string{"popular", "quiet", "unmeasured"}, ids(results))
}

func TestSortPriorityAscending(t *testing.T) {
	high := &types.Question{ID: "high", Priority: 9}
	low := &types.Question{ID: "low", Priority: 1}

	results := resultsOf(high, low)
	Advanced{SortBy: SortPriority, SortOrder: OrderAsc}.Sort(results)
	assert.Equal(t, []string{"low", "high"}, ids(results))
}

func TestSortRelevanceLeavesOrder(t *testing.T) {
	first := &types.Question{ID: "first", Priority: 1}
	second := &types.Question{ID: "second", Priority: 9}

	results := resultsOf(first, second)
	Advanced{SortBy: SortRelevance}.Sort(results)
	assert.Equal(t, []string{"first", "second"}, ids(results))

	Advanced{}.Sort(results)
	assert.Equal(t, []string{"first", "second"}, ids(results))
}

func TestGroupResultsByCategory(t *testing.T) {
	results := resultsOf(
		&types.Question{ID: "p1", Category: "pricing"},
		&types.Question{ID: "s1", Category: "subjects"},
		&types.Question{ID: "p2", Category: "pricing"},
	)

	groups := Advanced{GroupBy: GroupCategory}.GroupResults(results)
	require.Len(t, groups, 2)
	assert.Equal(t, "pricing", groups[0].Key)
	assert.Equal(t, []string{"p1", "p2"}, ids(groups[0].Results))
	assert.Equal(t, "subjects", groups[1].Key)
}

func TestGroupResultsByPopularity(t *testing.T) {
	results := resultsOf(
		&types.Question{ID: "hot", Analytics: &types.Analytics{Views: 2000}},
		&types.Question{ID: "warm", Analytics: &types.Analytics{Views: 150}},
		&types.Question{ID: "cold"},
	)

	groups := Advanced{GroupBy: GroupPopularity}.GroupResults(results)
	require.Len(t, groups, 3)
	assert.Equal(t, "popular", groups[0].Key)
	assert.Equal(t, "active", groups[1].Key)
	assert.Equal(t, "quiet", groups[2].Key)
}

func TestGroupResultsNoDirective(t *testing.T) {
	results := resultsOf(&types.Question{ID: "only"})
	groups := Advanced{}.GroupResults(results)
	require.Len(t, groups, 1)
	assert.Equal(t, "", groups[0].Key)
	assert.Len(t, groups[0].Results, 1)
}
