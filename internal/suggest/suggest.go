// Package suggest generates autocomplete suggestions from the corpus
// vocabulary. It is a cheaper pass than full search: a case-insensitive
// scan over curated keywords, tags, and category names, never the fuzzy
// index.
package suggest

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// DefaultLimit caps suggestions when the caller does not.
	DefaultLimit = 5

	// didYouMeanThreshold is the minimum similarity before a vocabulary
	// term is offered as a correction.
	didYouMeanThreshold = 0.75
)

// Source supplies the vocabulary lists. The corpus types satisfy it via
// the engine; tests use literals.
type Source struct {
	Keywords      []string
	Tags          []string
	CategoryNames []string
}

// Generator scans the corpus vocabularies for partial matches against a
// query fragment. Immutable after construction.
type Generator struct {
	keywords      []string
	tags          []string
	categoryNames []string
	vocabulary    []string // every unique term, for typo corrections
}

// New builds a generator from the vocabulary source, deduplicating each
// list while keeping first-seen order.
func New(src Source) *Generator {
	g := &Generator{}
	seen := make(map[string]bool)
	dedup := func(list []string) []string {
		var out []string
		for _, s := range list {
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
			g.vocabulary = append(g.vocabulary, s)
		}
		return out
	}
	g.keywords = dedup(src.Keywords)
	g.tags = dedup(src.Tags)
	g.categoryNames = dedup(src.CategoryNames)
	return g
}

// Suggest returns up to limit unique suggestions for a fragment as short
// as one character. Sources are scanned in priority order: keywords, then
// tags, then category names; terms equal to the fragment itself are
// excluded. When literal containment finds too few, typo-tolerant
// vocabulary matches top the list up.
func (g *Generator) Suggest(fragment string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	fragLower := strings.ToLower(strings.TrimSpace(fragment))
	if fragLower == "" {
		return nil
	}

	seen := make(map[string]bool)
	var suggestions []string
	add := func(term string) bool {
		key := strings.ToLower(term)
		if key == fragLower || seen[key] {
			return len(suggestions) < limit
		}
		seen[key] = true
		suggestions = append(suggestions, term)
		return len(suggestions) < limit
	}

	for _, list := range [][]string{g.keywords, g.tags, g.categoryNames} {
		for _, term := range list {
			if strings.Contains(strings.ToLower(term), fragLower) {
				if !add(term) {
					return suggestions
				}
			}
		}
	}

	if len(suggestions) < limit && len(fragLower) >= 3 {
		ranks := fuzzy.RankFindNormalizedFold(fragLower, g.vocabulary)
		sort.Sort(ranks)
		for _, rank := range ranks {
			if !add(rank.Target) {
				break
			}
		}
	}

	return suggestions
}

// DidYouMean returns the closest vocabulary term for a query that found
// nothing, or "" when no term is similar enough to offer.
func (g *Generator) DidYouMean(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 3 {
		return ""
	}

	best := ""
	bestSim := didYouMeanThreshold
	for _, term := range g.vocabulary {
		termLower := strings.ToLower(term)
		if termLower == q {
			return ""
		}
		sim, err := edlib.StringsSimilarity(q, termLower, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(sim) > bestSim {
			bestSim = float64(sim)
			best = term
		}
	}
	return best
}
