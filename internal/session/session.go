// Package session is the client-side orchestration layer over the search
// engine: it owns query/filter/result state, debounces rapid query
// updates, applies the advanced filter layer the engine does not
// understand, and tracks rolling performance statistics. It is the single
// error boundary for the subsystem, because it is the only component with
// a notion of user-facing state.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/debug"
	"github.com/tutorbase/faqsearch/internal/engine"
	faqerrors "github.com/tutorbase/faqsearch/internal/errors"
	"github.com/tutorbase/faqsearch/internal/filter"
	"github.com/tutorbase/faqsearch/internal/highlight"
	"github.com/tutorbase/faqsearch/internal/types"
)

// ErrEngineUnavailable marks searches attempted before a corpus was
// loaded. It is never surfaced as user-facing state: a search against a
// missing engine is a no-op that leaves results empty.
var ErrEngineUnavailable = errors.New("search engine unavailable")

// ErrQueryTooShort marks queries below the minimum length. It surfaces
// as a recoverable prompt in State.Error, not as a failure.
var ErrQueryTooShort = errors.New("query below minimum length")

// Performance stat bounds.
const (
	perfWindowSize     = 100
	historyLimit       = 50
	recentSearchLimit  = 10
	recentSuggestLimit = 2
)

// PerformanceStats is the rolling view over recent search timings.
type PerformanceStats struct {
	AverageSearchTime float64
	TotalSearches     int
	Rating            Rating
}

// Rating is the qualitative bucket for a search duration.
type Rating string

const (
	RatingExcellent  Rating = "excellent"
	RatingGood       Rating = "good"
	RatingAcceptable Rating = "acceptable"
	RatingPoor       Rating = "poor"
)

// RateDuration buckets a search duration in milliseconds.
func RateDuration(ms float64) Rating {
	switch {
	case ms < 50:
		return RatingExcellent
	case ms < 100:
		return RatingGood
	case ms < 200:
		return RatingAcceptable
	}
	return RatingPoor
}

// State is the full observable session state. Values returned by
// State() are snapshots; mutating them does not affect the session.
type State struct {
	Query            string
	Results          []types.SearchResult
	Groups           []filter.Group
	Metadata         *types.SearchMetadata
	IsSearching      bool
	HasSearched      bool
	Error            string
	Filters          filter.Criteria
	Suggestions      []string
	LastSearchTime   float64
	PerformanceStats PerformanceStats
	SearchHistory    []string
	RecentSearches   []string
}

// Option configures optional session behavior.
type Option func(*Session)

// WithClock injects the time source for recency scoring and date-range
// filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithOnChange registers a callback invoked with a state snapshot after
// every state transition. Invoked outside the session lock.
func WithOnChange(fn func(State)) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session owns one engine instance and its interaction state. Safe for
// concurrent use; the debounce machinery guarantees a superseded
// in-flight search can never overwrite the state of a newer one.
type Session struct {
	cfg      config.Session
	eng      *engine.Engine
	now      func() time.Time
	onChange func(State)

	mu         sync.Mutex
	state      State
	timer      *time.Timer
	generation uint64
	perfTimes  []float64
	totalRuns  int
}

// New builds a session over the corpus. An empty corpus skips engine
// construction entirely; searches then no-op with empty results.
func New(questions []*types.Question, categories []*types.Category, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg: cfg.Session,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	builder := engine.NewBuilder()
	eng, err := builder.Engine(questions, categories, cfg, engine.WithClock(s.clock))
	if err != nil {
		return nil, err
	}
	s.eng = eng
	return s, nil
}

// clock is indirected so the engine sees option-injected time sources
// even though it is built before options could reorder.
func (s *Session) clock() time.Time { return s.now() }

// Engine exposes the owned engine; nil when the corpus was empty.
func (s *Session) Engine() *engine.Engine { return s.eng }

// State returns a snapshot of the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	snap := s.state
	snap.Results = append([]types.SearchResult(nil), s.state.Results...)
	snap.Suggestions = append([]string(nil), s.state.Suggestions...)
	snap.SearchHistory = append([]string(nil), s.state.SearchHistory...)
	snap.RecentSearches = append([]string(nil), s.state.RecentSearches...)
	return snap
}

func (s *Session) notify(snap State) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// SetQuery updates the query, refreshes suggestions, and - when
// auto-search is on and an engine exists - schedules a debounced search.
// Only the most recent scheduling survives.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	s.state.Query = query
	s.refreshSuggestionsLocked()
	scheduled := s.cfg.AutoSearch && s.eng != nil
	var gen uint64
	var criteria filter.Criteria
	if scheduled {
		gen = s.bumpGenerationLocked()
		criteria = s.state.Filters
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if !scheduled {
		return
	}
	s.mu.Lock()
	s.timer = time.AfterFunc(time.Duration(s.cfg.DebounceMs)*time.Millisecond, func() {
		s.executeSearch(query, criteria, gen)
	})
	s.mu.Unlock()
}

// Search runs immediately, without debouncing, merging the patch into
// the current filters first. The returned error mirrors what lands in
// state for callers that want it synchronously.
func (s *Session) Search(query string, patch filter.Criteria) error {
	s.mu.Lock()
	s.state.Query = query
	s.state.Filters = filter.Merge(s.state.Filters, patch)
	criteria := s.state.Filters
	gen := s.bumpGenerationLocked()
	s.refreshSuggestionsLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return s.executeSearch(query, criteria, gen)
}

// SetFilters merges the patch into the current filters; with an active
// query and auto-search on, the search re-runs debounced.
func (s *Session) SetFilters(patch filter.Criteria) {
	s.mu.Lock()
	s.state.Filters = filter.Merge(s.state.Filters, patch)
	query := s.state.Query
	criteria := s.state.Filters
	rerun := query != "" && s.cfg.AutoSearch && s.eng != nil
	var gen uint64
	if rerun {
		gen = s.bumpGenerationLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if !rerun {
		return
	}
	s.mu.Lock()
	s.timer = time.AfterFunc(time.Duration(s.cfg.DebounceMs)*time.Millisecond, func() {
		s.executeSearch(query, criteria, gen)
	})
	s.mu.Unlock()
}

// ResetFilters clears all filters without touching results.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	s.state.Filters = filter.Criteria{}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// ClearSearch resets query, results, metadata, suggestions, and error to
// their initial state. Search history is deliberately kept.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	s.bumpGenerationLocked()
	s.state.Query = ""
	s.state.Results = nil
	s.state.Groups = nil
	s.state.Metadata = nil
	s.state.HasSearched = false
	s.state.Error = ""
	s.state.Suggestions = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// SelectSuggestion adopts a suggestion as the query. Selecting is a
// deliberate act, not a keystroke, so with auto-search on the search
// runs immediately rather than debounced.
func (s *Session) SelectSuggestion(suggestion string) {
	s.mu.Lock()
	s.state.Query = suggestion
	s.refreshSuggestionsLocked()
	criteria := s.state.Filters
	run := s.cfg.AutoSearch
	var gen uint64
	if run {
		gen = s.bumpGenerationLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if run {
		s.executeSearch(suggestion, criteria, gen)
	}
}

// Suggestions computes suggestions for an arbitrary fragment: engine
// vocabulary matches plus matching recent searches, deduplicated and
// capped.
func (s *Session) Suggestions(fragment string) []string {
	s.mu.Lock()
	recent := append([]string(nil), s.state.RecentSearches...)
	s.mu.Unlock()
	return s.suggestionsFor(fragment, recent)
}

func (s *Session) suggestionsFor(fragment string, recent []string) []string {
	if s.eng == nil || len(fragment) < 1 {
		return nil
	}
	out := s.eng.Suggestions(fragment, s.cfg.MaxSuggestions)

	fragLower := strings.ToLower(fragment)
	seen := make(map[string]bool, len(out))
	for _, sg := range out {
		seen[strings.ToLower(sg)] = true
	}
	added := 0
	for _, rs := range recent {
		if added >= recentSuggestLimit || len(out) >= s.cfg.MaxSuggestions {
			break
		}
		rsLower := strings.ToLower(rs)
		if rsLower == fragLower || !strings.Contains(rsLower, fragLower) || seen[rsLower] {
			continue
		}
		seen[rsLower] = true
		out = append(out, rs)
		added++
	}
	if len(out) > s.cfg.MaxSuggestions {
		out = out[:s.cfg.MaxSuggestions]
	}
	return out
}

// refreshSuggestionsLocked is the derived effect: any query of length
// >= 1 recomputes suggestions, anything shorter clears them.
func (s *Session) refreshSuggestionsLocked() {
	if len(s.state.Query) >= 1 {
		s.state.Suggestions = s.suggestionsFor(s.state.Query, s.state.RecentSearches)
		return
	}
	s.state.Suggestions = nil
}

// HighlightQuery wraps occurrences of query within arbitrary text, for
// ad hoc UI emphasis outside per-result highlighting.
func (s *Session) HighlightQuery(text, query string) string {
	return highlight.Query(text, query)
}

// PerformanceReport summarises whether recent searches meet the latency
// target, with remediation hints when they do not.
func (s *Session) PerformanceReport() (meetsTargets bool, recommendations []string) {
	s.mu.Lock()
	stats := s.state.PerformanceStats
	resultCount := len(s.state.Results)
	s.mu.Unlock()

	meetsTargets = stats.AverageSearchTime < 100
	if !meetsTargets {
		recommendations = append(recommendations,
			"Consider reducing search index size",
			"Optimize search result limit")
		if stats.AverageSearchTime > 200 {
			recommendations = append(recommendations,
				"Enable search result caching",
				"Consider server-side search for large datasets")
		}
	}
	if resultCount > 30 {
		recommendations = append(recommendations, "Consider pagination for large result sets")
	}
	return meetsTargets, recommendations
}

// Close cancels any pending debounced search. Safe to call more than
// once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bumpGenerationLocked()
}

// bumpGenerationLocked invalidates every in-flight search and cancels a
// pending debounce timer. Callers hold the lock.
func (s *Session) bumpGenerationLocked() uint64 {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.generation
}

// executeSearch is the single search path. The generation tag makes
// stale completions harmless: a superseded search finds the generation
// moved on and discards its result instead of overwriting newer state.
func (s *Session) executeSearch(query string, criteria filter.Criteria, gen uint64) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}

	if s.eng == nil {
		s.state.Results = nil
		s.state.Groups = nil
		s.state.Metadata = nil
		s.state.HasSearched = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return ErrEngineUnavailable
	}

	if len(query) < s.cfg.MinQueryLength {
		s.state.Results = nil
		s.state.Groups = nil
		s.state.Metadata = nil
		s.state.HasSearched = false
		s.state.Error = ""
		if len(query) > 0 {
			s.state.Error = fmt.Sprintf("Please enter at least %d characters", s.cfg.MinQueryLength)
		}
		tooShort := s.state.Error != ""
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		if tooShort {
			return ErrQueryTooShort
		}
		return nil
	}

	s.state.IsSearching = true
	s.state.Error = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	start := time.Now()
	results, meta, err := s.runEngineSearch(query, criteria)
	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6

	s.mu.Lock()
	if gen != s.generation {
		// A newer search settled first; this result is stale.
		s.mu.Unlock()
		debug.LogSession("discarding stale search for %q\n", query)
		return nil
	}

	if err != nil {
		// Previous results stay in place so the UI does not flash empty.
		s.state.IsSearching = false
		s.state.Error = "Search failed"
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		return err
	}

	s.state.Results = results
	s.state.Groups = nil
	if criteria.Advanced.GroupBy != "" && criteria.Advanced.GroupBy != filter.GroupNone {
		s.state.Groups = criteria.Advanced.GroupResults(results)
	}
	s.state.Metadata = &meta
	s.state.IsSearching = false
	s.state.HasSearched = true
	s.state.LastSearchTime = elapsed
	s.recordPerformanceLocked(elapsed)
	s.recordHistoryLocked(query)
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// runEngineSearch calls the engine and applies the advanced-only filter
// layer. The engine itself does not trap failures; this is the error
// boundary, so an index panic becomes an error here.
func (s *Session) runEngineSearch(query string, criteria filter.Criteria) (results []types.SearchResult, meta types.SearchMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = faqerrors.NewSearchError(query, fmt.Errorf("panic: %v", r))
		}
	}()

	results, meta = s.eng.Search(query, criteria.BasicSubset())
	results = criteria.Advanced.Apply(results, s.now())
	criteria.Advanced.Sort(results)
	meta.TotalResults = len(results)
	return results, meta, nil
}

func (s *Session) recordPerformanceLocked(elapsed float64) {
	if !s.cfg.PerformanceTracking {
		return
	}
	s.perfTimes = append(s.perfTimes, elapsed)
	if len(s.perfTimes) > perfWindowSize {
		s.perfTimes = s.perfTimes[len(s.perfTimes)-perfWindowSize:]
	}
	s.totalRuns++

	var sum float64
	for _, t := range s.perfTimes {
		sum += t
	}
	s.state.PerformanceStats = PerformanceStats{
		AverageSearchTime: sum / float64(len(s.perfTimes)),
		TotalSearches:     s.totalRuns,
		Rating:            RateDuration(elapsed),
	}
}

func (s *Session) recordHistoryLocked(query string) {
	if !containsString(s.state.SearchHistory, query) {
		s.state.SearchHistory = append([]string{query}, s.state.SearchHistory...)
		if len(s.state.SearchHistory) > historyLimit {
			s.state.SearchHistory = s.state.SearchHistory[:historyLimit]
		}
	}

	recent := []string{query}
	for _, rs := range s.state.RecentSearches {
		if rs != query {
			recent = append(recent, rs)
		}
	}
	if len(recent) > recentSearchLimit {
		recent = recent[:recentSearchLimit]
	}
	s.state.RecentSearches = recent
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
