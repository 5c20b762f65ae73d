// Package index implements approximate multi-field matching over the FAQ
// corpus. Each question is decomposed into weighted field values; a query
// matches a question when at least one field survives the fuzziness
// threshold, and the per-field scores combine into one provisional score
// in [0,1] where 0 is a perfect match.
package index

import (
	"math"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/sahilm/fuzzy"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/types"
)

// perfectScore substitutes for a literal zero field score so that the
// weighted product combination stays sensitive to the other fields.
const perfectScore = 0.001

// Per-lane base distances. Ordered by match quality: whole-field equality
// beats substring containment beats in-order subsequence beats typo-level
// token similarity.
const (
	exactFieldScore    = 0.0
	substringScore     = 0.1
	exactTokenScore    = 0.05
	prefixTokenScore   = 0.15
	containsTokenScore = 0.2
	subsequenceScore   = 0.35
)

// fieldValue is one searchable string belonging to a question. Array
// fields (tags, keywords) contribute one fieldValue per element, all
// sharing the element's field weight.
type fieldValue struct {
	field      types.MatchField
	arrayIndex int
	text       string
	lower      string
	norm       float64 // 1/sqrt(token count), for field-length normalization
}

type document struct {
	question *types.Question
	fields   []fieldValue
}

// Match is one question that survived fuzzy matching, with the character
// spans that produced it.
type Match struct {
	Question *types.Question
	Score    float64
	Fields   []types.FieldMatch
}

// Index is an immutable in-memory fuzzy match index over a question
// corpus. Construct once per corpus; queries are read-only.
type Index struct {
	cfg  config.Index
	docs []document
}

// New builds the index from the full question slice.
func New(questions []*types.Question, cfg config.Index) *Index {
	docs := make([]document, 0, len(questions))
	for _, q := range questions {
		doc := document{question: q}
		doc.addField(types.FieldQuestion, 0, q.Question)
		doc.addField(types.FieldAnswer, 0, q.Answer)
		for i, kw := range q.SearchKeywords {
			doc.addField(types.FieldKeywords, i, kw)
		}
		for i, tag := range q.Tags {
			doc.addField(types.FieldTags, i, tag)
		}
		doc.addField(types.FieldCategory, 0, q.Category)
		if q.Subcategory != "" {
			doc.addField(types.FieldSubcategory, 0, q.Subcategory)
		}
		docs = append(docs, doc)
	}
	return &Index{cfg: cfg, docs: docs}
}

func (d *document) addField(field types.MatchField, arrayIndex int, text string) {
	if text == "" {
		return
	}
	tokens := strings.Fields(text)
	norm := 1.0
	if len(tokens) > 0 {
		norm = 1 / math.Sqrt(float64(len(tokens)))
	}
	d.fields = append(d.fields, fieldValue{
		field:      field,
		arrayIndex: arrayIndex,
		text:       text,
		lower:      strings.ToLower(text),
		norm:       norm,
	})
}

// Size returns the number of indexed questions.
func (ix *Index) Size() int { return len(ix.docs) }

// Query matches the trimmed query against every document and returns up
// to limit matches ordered by ascending score. Empty and whitespace-only
// queries return nothing: at fuzzy thresholds an empty pattern would
// match the entire corpus.
func (ix *Index) Query(query string, limit int) []Match {
	qLower := strings.ToLower(strings.TrimSpace(query))
	if qLower == "" {
		return nil
	}
	tokens := strings.Fields(qLower)

	var matches []Match
	for di := range ix.docs {
		if m, ok := ix.matchDocument(&ix.docs[di], qLower, tokens); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// matchDocument combines per-field scores into one document score using
// a weighted product: score = prod over matched fields of s^(w*norm).
// Unmatched fields contribute nothing (a factor of 1); a document with no
// matching field is not a match at all.
func (ix *Index) matchDocument(doc *document, qLower string, tokens []string) (Match, bool) {
	// Best score per field name, since array fields contribute several
	// values but carry a single weight.
	best := make(map[types.MatchField]float64)
	norms := make(map[types.MatchField]float64)
	var fieldMatches []types.FieldMatch

	for i := range doc.fields {
		fv := &doc.fields[i]
		score, spans, ok := ix.matchField(fv, qLower, tokens)
		if !ok {
			continue
		}
		if prev, seen := best[fv.field]; !seen || score < prev {
			best[fv.field] = score
			norms[fv.field] = fv.norm
		}
		fieldMatches = append(fieldMatches, types.FieldMatch{
			Field:      fv.field,
			ArrayIndex: fv.arrayIndex,
			Value:      fv.text,
			Spans:      spans,
		})
	}

	if len(best) == 0 {
		return Match{}, false
	}

	combined := 1.0
	for field, score := range best {
		exponent := ix.cfg.Weights.For(field)
		if ix.cfg.FieldNormWeight > 0 {
			exponent *= math.Pow(norms[field], ix.cfg.FieldNormWeight)
		}
		combined *= math.Pow(math.Max(score, perfectScore), exponent)
	}

	return Match{
		Question: doc.question,
		Score:    clamp01(combined),
		Fields:   fieldMatches,
	}, true
}

// matchField scores one field value against the query through four lanes,
// best lane wins: whole-field equality, literal substring, in-order
// subsequence, then per-token typo matching.
func (ix *Index) matchField(fv *fieldValue, qLower string, tokens []string) (float64, []types.Span, bool) {
	if len(qLower) < ix.cfg.MinMatchLength {
		return 0, nil, false
	}

	if fv.lower == qLower {
		return exactFieldScore, []types.Span{{Start: 0, End: len(fv.text) - 1}}, true
	}

	if idx := strings.Index(fv.lower, qLower); idx >= 0 {
		score := substringScore
		if !ix.cfg.IgnoreLocation && ix.cfg.Distance > 0 {
			// Mid-string matches degrade with distance from the start.
			loc := math.Min(float64(idx), float64(ix.cfg.Distance))
			score += loc / float64(ix.cfg.Distance) * 0.1
		}
		return score, substringSpans(fv.lower, qLower, len(fv.text)), true
	}

	if spans, ok := ix.subsequenceSpans(fv.lower, qLower, len(fv.text)); ok {
		return subsequenceScore, spans, true
	}

	return ix.matchTokens(fv, tokens)
}

// subsequenceSpans runs in-order subsequence matching and converts the
// matched character indexes into spans, discarding runs shorter than the
// minimum match length.
func (ix *Index) subsequenceSpans(lower, qLower string, textLen int) ([]types.Span, bool) {
	found := fuzzy.Find(qLower, []string{lower})
	if len(found) == 0 {
		return nil, false
	}
	spans := runsToSpans(found[0].MatchedIndexes, ix.cfg.MinMatchLength, textLen)
	if len(spans) == 0 {
		return nil, false
	}
	return spans, true
}

// matchTokens scores the query tokens against the field tokens. Every
// query token must find some match: a token that matches nothing
// contributes the worst score, usually pushing the field past the
// threshold.
func (ix *Index) matchTokens(fv *fieldValue, tokens []string) (float64, []types.Span, bool) {
	fieldTokens := tokenize(fv.lower)
	if len(fieldTokens) == 0 || len(tokens) == 0 {
		return 0, nil, false
	}

	var total float64
	var spans []types.Span
	for _, qt := range tokens {
		if len(qt) < ix.cfg.MinMatchLength {
			total += 1
			continue
		}
		score, span, ok := ix.bestTokenMatch(qt, fieldTokens)
		if !ok {
			total += 1
			continue
		}
		total += score
		spans = append(spans, span)
	}

	avg := total / float64(len(tokens))
	if avg > ix.cfg.Threshold || len(spans) == 0 {
		return 0, nil, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	spans = mergeSpans(spans)
	clampSpans(spans, len(fv.text))
	return avg, spans, true
}

func (ix *Index) bestTokenMatch(qt string, fieldTokens []token) (float64, types.Span, bool) {
	bestScore := math.Inf(1)
	var bestSpan types.Span

	for _, ft := range fieldTokens {
		var score float64
		var span types.Span
		switch {
		case ft.text == qt:
			score = exactTokenScore
			span = types.Span{Start: ft.start, End: ft.start + len(ft.text) - 1}
		case strings.HasPrefix(ft.text, qt):
			score = prefixTokenScore
			span = types.Span{Start: ft.start, End: ft.start + len(qt) - 1}
		case strings.Contains(ft.text, qt):
			score = containsTokenScore
			off := strings.Index(ft.text, qt)
			span = types.Span{Start: ft.start + off, End: ft.start + off + len(qt) - 1}
		default:
			sim, err := edlib.StringsSimilarity(qt, ft.text, edlib.Levenshtein)
			if err != nil {
				continue
			}
			score = 1 - float64(sim)
			if score > ix.cfg.Threshold {
				continue
			}
			span = types.Span{Start: ft.start, End: ft.start + len(ft.text) - 1}
		}
		if score < bestScore {
			bestScore = score
			bestSpan = span
		}
	}

	if math.IsInf(bestScore, 1) {
		return 0, types.Span{}, false
	}
	return bestScore, bestSpan, true
}

type token struct {
	text  string
	start int
}

// tokenize splits on whitespace, keeping each token's byte offset so
// matches can be reported as spans in the original text.
func tokenize(s string) []token {
	var tokens []token
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' {
			if start >= 0 {
				tokens = append(tokens, token{text: s[start:i], start: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: s[start:], start: start})
	}
	return tokens
}

// substringSpans records every literal occurrence of the query in the
// field as an inclusive span.
func substringSpans(lower, qLower string, textLen int) []types.Span {
	var spans []types.Span
	for from := 0; ; {
		idx := strings.Index(lower[from:], qLower)
		if idx < 0 {
			break
		}
		start := from + idx
		spans = append(spans, types.Span{Start: start, End: start + len(qLower) - 1})
		from = start + len(qLower)
	}
	clampSpans(spans, textLen)
	return spans
}

// runsToSpans collapses sorted matched-character indexes into inclusive
// spans of consecutive characters, dropping runs below minLen.
func runsToSpans(indexes []int, minLen, textLen int) []types.Span {
	var spans []types.Span
	for i := 0; i < len(indexes); {
		j := i
		for j+1 < len(indexes) && indexes[j+1] == indexes[j]+1 {
			j++
		}
		if indexes[j]-indexes[i]+1 >= minLen {
			spans = append(spans, types.Span{Start: indexes[i], End: indexes[j]})
		}
		i = j + 1
	}
	clampSpans(spans, textLen)
	return spans
}

// mergeSpans unions overlapping or adjacent spans. Input must be sorted
// by start index.
func mergeSpans(spans []types.Span) []types.Span {
	if len(spans) < 2 {
		return spans
	}
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End+1 {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// clampSpans guards against lowercase folding changing byte lengths for
// non-ASCII content: spans are computed over the folded text but applied
// to the original.
func clampSpans(spans []types.Span, textLen int) {
	for i := range spans {
		if spans[i].End > textLen-1 {
			spans[i].End = textLen - 1
		}
		if spans[i].Start > spans[i].End {
			spans[i].Start = spans[i].End
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
