package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/filter"
	"github.com/tutorbase/faqsearch/internal/highlight"
	"github.com/tutorbase/faqsearch/internal/types"
)

var engineNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func corpus() ([]*types.Question, []*types.Category) {
	questions := []*types.Question{
		{
			ID:             "fees",
			Question:       "How much does tutoring cost?",
			Answer:         "Our tutoring fees start at 45 pounds per hour depending on the level.",
			Category:       "pricing",
			Tags:           []string{"fees", "payment"},
			SearchKeywords: []string{"price", "cost", "fees"},
			Priority:       8,
			LastUpdated:    engineNow.AddDate(0, 0, -10),
			Difficulty:     types.DifficultyBasic,
		},
		{
			ID:             "subjects",
			Question:       "What subjects do you cover?",
			Answer:         "We cover mathematics, sciences, and languages at every level.",
			Category:       "subjects",
			Tags:           []string{"curriculum"},
			SearchKeywords: []string{"subjects", "maths", "science"},
			Priority:       5,
			LastUpdated:    engineNow.AddDate(0, -8, 0),
			Difficulty:     types.DifficultyIntermediate,
		},
		{
			ID:             "oxbridge",
			Question:       "How do I prepare for Oxbridge interviews?",
			Answer:         "The Oxbridge programme includes mock interviews and admissions coaching.",
			Category:       "admissions",
			Tags:           []string{"oxbridge", "interviews"},
			SearchKeywords: []string{"oxbridge", "interview"},
			Priority:       9,
			LastUpdated:    engineNow.AddDate(0, 0, -2),
			Featured:       true,
			ClientSegment:  types.SegmentOxbridgePrep,
			Difficulty:     types.DifficultyAdvanced,
		},
	}
	categories := []*types.Category{
		{ID: "pricing", Name: "Pricing"},
		{ID: "subjects", Name: "Subjects"},
		{ID: "admissions", Name: "Admissions"},
	}
	return questions, categories
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	questions, categories := corpus()
	e, err := New(questions, categories, config.Default(), WithClock(func() time.Time { return engineNow }))
	require.NoError(t, err)
	return e
}

func TestSearchReturnsRelevantResultFirst(t *testing.T) {
	e := newTestEngine(t)

	results, meta := e.Search("fees", filter.Basic{})
	require.NotEmpty(t, results)
	assert.Equal(t, "fees", results[0].Item.ID)
	assert.Equal(t, len(results), meta.TotalResults)
	assert.Equal(t, "fees", meta.Query)

	// Literal containment in the answer drives the text-match factor.
	assert.GreaterOrEqual(t, results[0].RelevanceFactors.TextMatch, 0.3)
}

func TestSearchEmptyQuery(t *testing.T) {
	e := newTestEngine(t)

	results, meta := e.Search("   ", filter.Basic{})
	assert.Empty(t, results)
	assert.Equal(t, 0, meta.TotalResults)
	assert.Empty(t, meta.Facets.Categories)
	assert.GreaterOrEqual(t, meta.ExecutionTime, 0.0)
}

func TestSearchDeterministic(t *testing.T) {
	e := newTestEngine(t)

	first, _ := e.Search("tutoring", filter.Basic{})
	for i := 0; i < 5; i++ {
		again, _ := e.Search("tutoring", filter.Basic{})
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Item.ID, again[j].Item.ID)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestSearchCategoryFilterExcludes(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Search("how", filter.Basic{Category: "admissions"})
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "admissions", r.Item.Category)
	}

	none, _ := e.Search("oxbridge", filter.Basic{Category: "pricing"})
	assert.Empty(t, none)
}

func TestSearchLimit(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Search("how", filter.Basic{Limit: 1})
	assert.Len(t, results, 1)
}

func TestSearchResolvesCategoryRecord(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Search("oxbridge", filter.Basic{})
	require.NotEmpty(t, results)
	require.NotNil(t, results[0].Category)
	assert.Equal(t, "Admissions", results[0].Category.Name)
}

func TestSearchHighlightRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Search("oxbridge", filter.Basic{})
	require.NotEmpty(t, results)
	r := results[0]
	assert.Equal(t, r.Item.Question, highlight.Strip(r.Highlighted.Question))
	assert.Equal(t, r.Item.Answer, highlight.Strip(r.Highlighted.Answer))
	for i, tag := range r.Highlighted.Tags {
		assert.Equal(t, r.Item.Tags[i], highlight.Strip(tag))
	}
}

func TestSearchMetadataFacets(t *testing.T) {
	e := newTestEngine(t)

	_, meta := e.Search("tutoring", filter.Basic{})
	assert.Equal(t, []string{"Pricing", "Subjects", "Admissions"}, meta.Facets.Categories)
	assert.Equal(t, []string{"basic", "intermediate", "advanced"}, meta.Facets.Difficulties)
	assert.Len(t, meta.Facets.Segments, 4)
	assert.Equal(t, 3, meta.Performance.IndexSize)
}

func TestSearchDidYouMeanOnZeroResults(t *testing.T) {
	e := newTestEngine(t)

	results, meta := e.Search("oxbrige admissions zzz", filter.Basic{})
	if len(results) == 0 {
		assert.NotEmpty(t, meta.DidYouMean)
	}

	// A query with results never carries a correction.
	_, meta = e.Search("fees", filter.Basic{})
	assert.Empty(t, meta.DidYouMean)
}

func TestFeaturedRanksAboveEqualMatch(t *testing.T) {
	questions := []*types.Question{
		{ID: "plain", Question: "booking a lesson online", Priority: 5},
		{ID: "featured", Question: "booking a lesson online", Priority: 5, Featured: true},
	}
	e, err := New(questions, nil, config.Default(), WithClock(func() time.Time { return engineNow }))
	require.NoError(t, err)

	results, _ := e.Search("booking", filter.Basic{})
	require.Len(t, results, 2)
	assert.Equal(t, "featured", results[0].Item.ID)
	assert.Less(t, results[0].Score, results[1].Score)
}

func TestSegmentFilterKeepsUniversalContent(t *testing.T) {
	questions := []*types.Question{
		{ID: "targeted", Question: "corporate tutoring packages", ClientSegment: types.SegmentEliteCorporate},
		{ID: "universal", Question: "corporate tutoring overview", ClientSegment: types.SegmentAll},
		{ID: "other", Question: "corporate tutoring for exams", ClientSegment: types.SegmentElevenPlus},
	}
	e, err := New(questions, nil, config.Default(), WithClock(func() time.Time { return engineNow }))
	require.NoError(t, err)

	results, _ := e.Search("corporate tutoring", filter.Basic{ClientSegment: types.SegmentEliteCorporate})
	got := map[string]bool{}
	for _, r := range results {
		got[r.Item.ID] = true
	}
	assert.True(t, got["targeted"])
	assert.True(t, got["universal"])
	assert.False(t, got["other"])
}

func TestHistoryBounded(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < types.EngineHistorySize+20; i++ {
		e.Search(fmt.Sprintf("query %d", i), filter.Basic{})
	}

	history := e.History()
	assert.Len(t, history, types.EngineHistorySize)
	assert.Equal(t, fmt.Sprintf("query %d", types.EngineHistorySize+19), history[0])
}

func TestSuggestionsFromEngine(t *testing.T) {
	e := newTestEngine(t)

	got := e.Suggestions("ox", 5)
	assert.Contains(t, got, "oxbridge")
}

func TestInvalidConfigRejected(t *testing.T) {
	questions, categories := corpus()
	cfg := config.Default()
	cfg.Index.Threshold = 2.0

	_, err := New(questions, categories, cfg)
	assert.Error(t, err)
}

func TestNilConfigUsesDefaults(t *testing.T) {
	questions, categories := corpus()
	e, err := New(questions, categories, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.4, e.Config().Index.Threshold)
}
