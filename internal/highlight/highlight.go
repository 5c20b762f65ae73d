// Package highlight wraps matched character spans in emphasis markup for
// UI rendering. Stripping the markup always reproduces the original text.
package highlight

import (
	"strings"

	"github.com/tutorbase/faqsearch/internal/types"
)

// Default markup tags. The class list mirrors what the site's result list
// styles expect.
const (
	OpenTag  = `<mark class="bg-yellow-200 text-yellow-900 px-1 py-0.5 rounded">`
	CloseTag = `</mark>`
)

// Apply wraps each inclusive [Start,End] span of text in the default
// markup. Spans are processed in ascending start order; overlapping spans
// are not produced by the index and are not defended against.
func Apply(text string, spans []types.Span) string {
	return ApplyTags(text, spans, OpenTag, CloseTag)
}

// ApplyTags is Apply with caller-chosen markup.
func ApplyTags(text string, spans []types.Span, openTag, closeTag string) string {
	if len(spans) == 0 {
		return text
	}

	sorted := make([]types.Span, len(spans))
	copy(sorted, spans)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	var b strings.Builder
	b.Grow(len(text) + len(sorted)*(len(openTag)+len(closeTag)))
	last := 0
	for _, s := range sorted {
		if s.Start < last || s.Start >= len(text) {
			continue
		}
		end := s.End
		if end > len(text)-1 {
			end = len(text) - 1
		}
		b.WriteString(text[last:s.Start])
		b.WriteString(openTag)
		b.WriteString(text[s.Start : end+1])
		b.WriteString(closeTag)
		last = end + 1
	}
	b.WriteString(text[last:])
	return b.String()
}

// Result produces the highlighted copy of a question from its field
// matches. Fields without matches pass through unchanged; for tags only
// the specific element that matched is rewritten.
func Result(q *types.Question, matches []types.FieldMatch) types.Highlighted {
	h := types.Highlighted{
		Question: q.Question,
		Answer:   q.Answer,
		Tags:     append([]string(nil), q.Tags...),
	}
	for _, m := range matches {
		switch m.Field {
		case types.FieldQuestion:
			h.Question = Apply(q.Question, m.Spans)
		case types.FieldAnswer:
			h.Answer = Apply(q.Answer, m.Spans)
		case types.FieldTags:
			if m.ArrayIndex >= 0 && m.ArrayIndex < len(h.Tags) {
				h.Tags[m.ArrayIndex] = Apply(q.Tags[m.ArrayIndex], m.Spans)
			}
		}
	}
	return h
}

// Query highlights every case-insensitive literal occurrence of query in
// text. This is the ad hoc utility the UI uses for emphasis outside of
// per-result highlighting.
func Query(text, query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerQ := strings.ToLower(q)

	var spans []types.Span
	for from := 0; ; {
		idx := strings.Index(lowerText[from:], lowerQ)
		if idx < 0 {
			break
		}
		start := from + idx
		spans = append(spans, types.Span{Start: start, End: start + len(lowerQ) - 1})
		from = start + len(lowerQ)
	}
	return Apply(text, spans)
}

// Strip removes the default markup, recovering the original text.
func Strip(text string) string {
	text = strings.ReplaceAll(text, OpenTag, "")
	return strings.ReplaceAll(text, CloseTag, "")
}
