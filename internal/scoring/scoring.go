// Package scoring converts raw fuzzy-match scores into final ranking
// scores using five independent, explainable relevance factors. Fuzzy
// match quality stays the dominant signal; curatorial metadata only
// perturbs the ordering, never overrides it.
package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/surgebase/porter2"

	"github.com/tutorbase/faqsearch/internal/config"
	"github.com/tutorbase/faqsearch/internal/types"
)

// textMatch factor constants: literal substring hits are rewarded over
// purely fuzzy ones.
const (
	questionContainsBonus = 0.5
	answerContainsBonus   = 0.3
	keywordOverlapBonus   = 0.1
	keywordOverlapCap     = 0.2
)

// Context carries the per-query inputs a factor computation needs.
type Context struct {
	Query    string
	Category string
	Segment  types.Segment
	Now      time.Time
}

// Scorer computes relevance factors and applies boost multipliers.
type Scorer struct {
	cfg config.Boosts
}

// New returns a scorer using the given boost policy.
func New(cfg config.Boosts) *Scorer {
	return &Scorer{cfg: cfg}
}

// Factors computes the five relevance factors for one question.
func (s *Scorer) Factors(q *types.Question, ctx Context) types.RelevanceFactors {
	return types.RelevanceFactors{
		TextMatch:          s.textMatch(q, ctx.Query),
		CategoryMatch:      s.categoryMatch(q, ctx.Category),
		PriorityBoost:      float64(q.EffectivePriority()) / 10,
		RecentBoost:        s.recentBoost(q.LastUpdated, ctx.Now),
		ClientSegmentMatch: s.segmentMatch(q, ctx.Segment),
	}
}

// textMatch rewards literal containment of the query in the question and
// answer text, plus partial overlap with the curated keyword list, capped
// at 1.0.
func (s *Scorer) textMatch(q *types.Question, query string) float64 {
	queryLower := strings.ToLower(query)
	score := 0.0
	if strings.Contains(strings.ToLower(q.Question), queryLower) {
		score += questionContainsBonus
	}
	if strings.Contains(strings.ToLower(q.Answer), queryLower) {
		score += answerContainsBonus
	}

	queryStem := porter2.Stem(queryLower)
	overlap := 0.0
	for _, kw := range q.SearchKeywords {
		kwLower := strings.ToLower(kw)
		if strings.Contains(kwLower, queryLower) || strings.Contains(queryLower, kwLower) ||
			porter2.Stem(kwLower) == queryStem {
			overlap += keywordOverlapBonus
			if overlap >= keywordOverlapCap {
				overlap = keywordOverlapCap
				break
			}
		}
	}
	score += overlap

	if score > 1 {
		return 1
	}
	return score
}

func (s *Scorer) categoryMatch(q *types.Question, category string) float64 {
	if category != "" && q.Category == category {
		return 1
	}
	return 0
}

// recentBoost decays linearly from the ceiling (just updated) to zero
// across the recency window. Disabled entirely when BoostRecent is off.
func (s *Scorer) recentBoost(lastUpdated, now time.Time) float64 {
	if !s.cfg.BoostRecent || lastUpdated.IsZero() {
		return 0
	}
	window := float64(s.cfg.RecencyWindowDays)
	days := now.Sub(lastUpdated).Hours() / 24
	fraction := (window - days) / window
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return fraction * s.cfg.RecencyCeiling
}

func (s *Scorer) segmentMatch(q *types.Question, target types.Segment) float64 {
	if target == "" {
		target = s.cfg.ClientSegmentBoost
	}
	if target == "" || q.ClientSegment == "" {
		return 0
	}
	if q.ClientSegment == target {
		return 0.2
	}
	if q.ClientSegment == types.SegmentAll {
		return 0.1
	}
	return 0
}

// Boost rewrites each result's score with the combined boost multiplier
// and re-sorts: ascending adjusted score, ties broken by descending
// priority. Scores rank ascending, so the multiplier divides: stronger
// boosts and the featured multiplier both pull a result toward the top.
func (s *Scorer) Boost(results []types.SearchResult) {
	for i := range results {
		r := &results[i]
		f := r.RelevanceFactors

		multiplier := 1 +
			f.CategoryMatch*s.cfg.CategoryWeight +
			f.PriorityBoost*s.cfg.PriorityWeight +
			f.RecentBoost +
			f.ClientSegmentMatch +
			f.TextMatch*s.cfg.TextMatchWeight

		featured := 1.0
		if r.Item.Featured && s.cfg.BoostFeatured {
			featured = s.cfg.FeaturedMultiplier
		}

		r.Score = r.Score / multiplier * featured
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Item.EffectivePriority() > results[j].Item.EffectivePriority()
	})
}
