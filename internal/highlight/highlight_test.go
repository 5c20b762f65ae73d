package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tutorbase/faqsearch/internal/types"
)

func TestApplyWrapsSpans(t *testing.T) {
	got := Apply("tutoring fees", []types.Span{{Start: 9, End: 12}})
	assert.Equal(t, "tutoring "+OpenTag+"fees"+CloseTag, got)
}

func TestApplyNoSpansReturnsOriginal(t *testing.T) {
	assert.Equal(t, "unchanged", Apply("unchanged", nil))
}

func TestApplyMultipleSpansInOrder(t *testing.T) {
	// Spans arrive unsorted; output still reads left to right.
	got := ApplyTags("one two three", []types.Span{
		{Start: 8, End: 12},
		{Start: 0, End: 2},
	}, "<b>", "</b>")
	assert.Equal(t, "<b>one</b> two <b>three</b>", got)
}

func TestApplyClampsOutOfRangeSpans(t *testing.T) {
	got := ApplyTags("abc", []types.Span{{Start: 1, End: 99}}, "<b>", "</b>")
	assert.Equal(t, "a<b>bc</b>", got)
}

func TestStripRoundTrip(t *testing.T) {
	texts := []string{
		"plain text",
		"tutoring fees and more fees",
		"",
	}
	spanSets := [][]types.Span{
		nil,
		{{Start: 0, End: 7}},
		{{Start: 9, End: 12}, {Start: 23, End: 26}},
	}
	for _, text := range texts {
		for _, spans := range spanSets {
			if text == "" && len(spans) > 0 {
				continue
			}
			assert.Equal(t, text, Strip(Apply(text, spans)), "text %q spans %v", text, spans)
		}
	}
}

func TestQueryHighlightsAllOccurrences(t *testing.T) {
	got := Query("Fees and more fees", "fees")
	assert.Equal(t, OpenTag+"Fees"+CloseTag+" and more "+OpenTag+"fees"+CloseTag, got)
}

func TestQueryEmptyIsNoOp(t *testing.T) {
	assert.Equal(t, "text", Query("text", ""))
	assert.Equal(t, "text", Query("text", "   "))
}

func TestResultHighlightsOnlyMatchedFields(t *testing.T) {
	q := &types.Question{
		Question: "How much does tutoring cost?",
		Answer:   "Fees start at 45 pounds.",
		Tags:     []string{"fees", "payment"},
	}
	matches := []types.FieldMatch{
		{Field: types.FieldQuestion, Value: q.Question, Spans: []types.Span{{Start: 14, End: 21}}},
		{Field: types.FieldTags, ArrayIndex: 0, Value: "fees", Spans: []types.Span{{Start: 0, End: 3}}},
	}

	h := Result(q, matches)
	assert.Contains(t, h.Question, OpenTag+"tutoring"+CloseTag)
	assert.Equal(t, q.Answer, h.Answer)
	assert.Equal(t, OpenTag+"fees"+CloseTag, h.Tags[0])
	assert.Equal(t, "payment", h.Tags[1])
}

func TestResultKeywordMatchLeavesTextAlone(t *testing.T) {
	q := &types.Question{
		Question:       "What subjects do you cover?",
		Answer:         "Maths and sciences.",
		SearchKeywords: []string{"maths"},
	}
	matches := []types.FieldMatch{
		{Field: types.FieldKeywords, ArrayIndex: 0, Value: "maths", Spans: []types.Span{{Start: 0, End: 4}}},
	}

	h := Result(q, matches)
	assert.Equal(t, q.Question, h.Question)
	assert.Equal(t, q.Answer, h.Answer)
}
