// Package engine composes the fuzzy index, relevance scorer, highlighter,
// filter pipeline, and suggestion generator behind a single search entry
// point. An engine is immutable once built except for its write-only
// search-history ring; every search call is independent and stateless
// with respect to ranking.
package engine

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/debug"
	"github.com/tutorbase/faqsearch/internal/filter"
	"github.com/tutorbase/faqsearch/internal/highlight"
	"github.com/tutorbase/faqsearch/internal/index"
	"github.com/tutorbase/faqsearch/internal/scoring"
	"github.com/tutorbase/faqsearch/internal/suggest"
	"github.com/tutorbase/faqsearch/internal/types"
)

// Option configures optional engine behavior.
type Option func(*Engine)

// WithClock injects the time source used for recency scoring, letting
// tests freeze the clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the search facade over one immutable corpus snapshot.
type Engine struct {
	cfg        *config.Config
	idx        *index.Index
	scorer     *scoring.Scorer
	suggester  *suggest.Generator
	questions  []*types.Question
	categories []*types.Category

	questionByID map[string]*types.Question
	categoryByID map[string]*types.Category

	now func() time.Time

	mu      sync.Mutex
	history []string // most-recent-first ring, bounded
}

// New builds an engine over the question and category corpus. A nil
// config uses the defaults; an invalid config is rejected.
func New(questions []*types.Question, categories []*types.Category, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:          cfg,
		questions:    questions,
		categories:   categories,
		questionByID: make(map[string]*types.Question, len(questions)),
		categoryByID: make(map[string]*types.Category, len(categories)),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, q := range questions {
		e.questionByID[q.ID] = q
	}
	for _, c := range categories {
		e.categoryByID[c.ID] = c
	}

	e.idx = index.New(questions, cfg.Index)
	e.scorer = scoring.New(cfg.Boosts)
	e.suggester = suggest.New(vocabularySource(questions, categories))

	debug.LogIndex("built engine: %d questions, %d categories\n", len(questions), len(categories))
	return e, nil
}

func vocabularySource(questions []*types.Question, categories []*types.Category) suggest.Source {
	var src suggest.Source
	for _, q := range questions {
		src.Keywords = append(src.Keywords, q.SearchKeywords...)
		src.Tags = append(src.Tags, q.Tags...)
	}
	for _, c := range categories {
		src.CategoryNames = append(src.CategoryNames, c.Name)
	}
	return src
}

// Search runs the full pipeline: fuzzy match, result assembly with
// highlighting and relevance factors, basic filtering, boost application,
// and truncation. Empty and whitespace-only queries return zero results
// with well-formed metadata rather than an error.
func (e *Engine) Search(query string, f filter.Basic) ([]types.SearchResult, types.SearchMetadata) {
	start := time.Now()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, e.emptyMetadata(query, start)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = e.cfg.Index.MaxResults
	}

	matches := e.idx.Query(trimmed, limit)

	sctx := scoring.Context{
		Query:    trimmed,
		Category: f.Category,
		Segment:  f.ClientSegment,
		Now:      e.now(),
	}

	results := make([]types.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.SearchResult{
			Item:             m.Question,
			Score:            m.Score,
			Matches:          m.Fields,
			Category:         e.categoryByID[m.Question.Category],
			Highlighted:      highlight.Result(m.Question, m.Fields),
			RelevanceFactors: e.scorer.Factors(m.Question, sctx),
		})
	}

	results = f.Apply(results)
	e.scorer.Boost(results)
	if len(results) > limit {
		results = results[:limit]
	}

	elapsed := elapsedMillis(start)
	e.recordSearch(trimmed)
	debug.LogSearch("query=%q results=%d elapsed=%.2fms\n", trimmed, len(results), elapsed)

	meta := types.SearchMetadata{
		Query:         trimmed,
		TotalResults:  len(results),
		ExecutionTime: elapsed,
		Suggestions:   e.Suggestions(trimmed, suggest.DefaultLimit),
		Facets: types.Facets{
			Categories:   e.categoryNames(),
			Difficulties: difficultyNames(),
			Segments:     segmentNames(),
		},
		Performance: types.Performance{
			IndexSize:      e.idx.Size(),
			SearchTime:     elapsed,
			ProcessingTime: 0,
		},
	}
	if len(results) == 0 {
		meta.DidYouMean = e.suggester.DidYouMean(trimmed)
	}
	return results, meta
}

// Suggestions returns up to limit autocomplete suggestions for a query
// fragment without touching the fuzzy index.
func (e *Engine) Suggestions(fragment string, limit int) []string {
	return e.suggester.Suggest(fragment, limit)
}

// DidYouMean exposes the typo-correction lookup for zero-result queries.
func (e *Engine) DidYouMean(query string) string {
	return e.suggester.DidYouMean(query)
}

// History returns a copy of the bounded search-history ring, most recent
// first. Search never reads it; it exists for analytics collaborators.
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.history...)
}

// Questions returns the corpus the engine was built over.
func (e *Engine) Questions() []*types.Question { return e.questions }

// Categories returns the category corpus.
func (e *Engine) Categories() []*types.Category { return e.categories }

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// IndexSize returns the number of indexed questions.
func (e *Engine) IndexSize() int { return e.idx.Size() }

func (e *Engine) recordSearch(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append([]string{query}, e.history...)
	if len(e.history) > types.EngineHistorySize {
		e.history = e.history[:types.EngineHistorySize]
	}
}

func (e *Engine) emptyMetadata(query string, start time.Time) types.SearchMetadata {
	elapsed := elapsedMillis(start)
	return types.SearchMetadata{
		Query:         query,
		TotalResults:  0,
		ExecutionTime: elapsed,
		Suggestions:   e.Suggestions(query, suggest.DefaultLimit),
		Facets:        types.Facets{},
		Performance: types.Performance{
			IndexSize:      0,
			SearchTime:     elapsed,
			ProcessingTime: 0,
		},
	}
}

func (e *Engine) categoryNames() []string {
	names := make([]string, 0, len(e.categories))
	for _, c := range e.categories {
		names = append(names, c.Name)
	}
	return names
}

func difficultyNames() []string {
	names := make([]string, 0, len(types.Difficulties))
	for _, d := range types.Difficulties {
		names = append(names, string(d))
	}
	return names
}

func segmentNames() []string {
	names := make([]string, 0, len(types.Segments))
	for _, s := range types.Segments {
		names = append(names, string(s))
	}
	return names
}

// elapsedMillis returns wall-clock milliseconds since start, rounded to
// two decimal places.
func elapsedMillis(start time.Time) float64 {
	ms := float64(time.Since(start).Nanoseconds()) / 1e6
	return math.Round(ms*100) / 100
}
