package types

import (
	"strings"
	"time"
)

// Common engine-wide constants
const (
	// DefaultMaxResults caps how many results a single search returns.
	// Rationale: the corpus is rendered client-side; anything beyond 50
	// entries is never scrolled to and only inflates highlight work.
	DefaultMaxResults = 50

	// DefaultMinMatchLength is the minimum number of characters a match
	// span must cover before it is considered a real match. Single-letter
	// hits are noise at fuzzy thresholds.
	DefaultMinMatchLength = 2

	// EngineHistorySize bounds the engine's internal search-history ring.
	EngineHistorySize = 100
)

// Difficulty is the author-assigned difficulty level of a question.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists every difficulty level in display order.
var Difficulties = []Difficulty{DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced}

// Segment identifies a client audience segment. SegmentAll is universal
// content that matches every segment filter.
type Segment string

const (
	SegmentOxbridgePrep     Segment = "oxbridge_prep"
	SegmentElevenPlus       Segment = "11_plus"
	SegmentEliteCorporate   Segment = "elite_corporate"
	SegmentComparisonShopper Segment = "comparison_shopper"
	SegmentAll              Segment = "all"
)

// Segments lists the targetable audience segments (SegmentAll excluded).
var Segments = []Segment{SegmentOxbridgePrep, SegmentElevenPlus, SegmentEliteCorporate, SegmentComparisonShopper}

// Analytics is the optional engagement sub-record attached to a question.
type Analytics struct {
	Views      int  `json:"views"`
	Helpful    int  `json:"helpful"`
	NotHelpful int  `json:"notHelpful"`
	Trending   bool `json:"trending"`
}

// Rating converts helpful/not-helpful counts to a 0-5 rating.
// Returns false when there is no vote data to rate.
func (a *Analytics) Rating() (float64, bool) {
	if a == nil || a.Helpful == 0 || a.NotHelpful == 0 {
		return 0, false
	}
	return float64(a.Helpful) / float64(a.Helpful+a.NotHelpful) * 5, true
}

// Helpfulness converts helpful/not-helpful counts to a 0-100 percentage.
// Returns false when there is no vote data.
func (a *Analytics) Helpfulness() (float64, bool) {
	if a == nil || a.Helpful == 0 || a.NotHelpful == 0 {
		return 0, false
	}
	return float64(a.Helpful) / float64(a.Helpful+a.NotHelpful) * 100, true
}

// Question is the atomic searchable unit, authored in the CMS and loaded
// once per engine construction. Instances are never mutated during search.
type Question struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags"`

	// SearchKeywords are curated synonym/phrase keywords, distinct from
	// tags, used for keyword-overlap boosting.
	SearchKeywords []string `json:"searchKeywords"`

	// Priority is the author-assigned importance, always in [1,10].
	Priority int `json:"priority"`

	RelatedIDs  []string  `json:"relatedFAQs,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	CreatedDate time.Time `json:"createdDate,omitempty"`
	Featured    bool      `json:"featured"`

	ClientSegment Segment    `json:"clientSegment,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`

	// EstimatedReadTime is in minutes; zero means unknown.
	EstimatedReadTime int `json:"estimatedReadTime,omitempty"`

	Analytics *Analytics `json:"analytics,omitempty"`
}

// WordCount returns the combined word count of question and answer text,
// used for content-length bucketing.
func (q *Question) WordCount() int {
	return len(strings.Fields(q.Question + " " + q.Answer))
}

// EffectivePriority returns the priority, substituting the midpoint for
// records that never had one assigned.
func (q *Question) EffectivePriority() int {
	if q.Priority == 0 {
		return 5
	}
	return q.Priority
}

// Category groups questions for navigation and facet filtering.
type Category struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Order       int      `json:"order,omitempty"`
	QuestionIDs []string `json:"questionIds,omitempty"`
}

// MatchField identifies which question field a fuzzy match landed in.
type MatchField string

const (
	FieldQuestion    MatchField = "question"
	FieldAnswer      MatchField = "answer"
	FieldKeywords    MatchField = "searchKeywords"
	FieldTags        MatchField = "tags"
	FieldCategory    MatchField = "category"
	FieldSubcategory MatchField = "subcategory"
)

// Span is an inclusive [Start,End] character range within a matched field.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters the span covers.
func (s Span) Len() int { return s.End - s.Start + 1 }

// FieldMatch records where a query matched within one field of a question.
// For array fields (tags), ArrayIndex identifies the element that matched.
type FieldMatch struct {
	Field      MatchField
	ArrayIndex int
	Value      string
	Spans      []Span
}

// Highlighted carries copies of the matched fields with every match span
// wrapped in emphasis markup. Untouched tags pass through unchanged.
type Highlighted struct {
	Question string
	Answer   string
	Tags     []string
}

// RelevanceFactors are the five orthogonal relevance signals computed per
// result, each in [0,1]. They explain how the final score was perturbed.
type RelevanceFactors struct {
	TextMatch          float64
	CategoryMatch      float64
	PriorityBoost      float64
	RecentBoost        float64
	ClientSegmentMatch float64
}

// SearchResult is one ranked hit. Score starts as the raw fuzzy index
// score (lower is better, 0 = perfect) and becomes the adjusted ranking
// score once boosts are applied.
type SearchResult struct {
	Item             *Question
	Score            float64
	Matches          []FieldMatch
	Category         *Category
	Highlighted      Highlighted
	RelevanceFactors RelevanceFactors
}

// Facets are the filterable dimensions advertised in search metadata.
type Facets struct {
	Categories   []string
	Difficulties []string
	Segments     []string
}

// Performance is the internal per-query performance sub-record.
type Performance struct {
	IndexSize      int
	SearchTime     float64
	ProcessingTime float64
}

// SearchMetadata summarises one search call for the UI and analytics.
type SearchMetadata struct {
	Query         string
	TotalResults  int
	ExecutionTime float64 // milliseconds, rounded to 2 decimals
	Suggestions   []string
	DidYouMean    string
	Facets        Facets
	Performance   Performance
}
