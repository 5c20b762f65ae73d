package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	faqerrors "github.com/tutorbase/faqsearch/internal/errors"
	"github.com/tutorbase/faqsearch/internal/types"
)

// Default boost policy constants. These are tuned values, not derived ones;
// keep the relative ordering (featured moves up, higher priority moves up)
// when retuning.
const (
	DefaultCategoryBoostWeight  = 0.2
	DefaultPriorityBoostWeight  = 0.1
	DefaultTextMatchBoostWeight = 0.15
	DefaultFeaturedMultiplier   = 0.9
	DefaultRecencyWindowDays    = 90
	DefaultRecencyCeiling       = 0.1
)

// Config is the full engine + session configuration.
type Config struct {
	Index   Index   `toml:"index"`
	Boosts  Boosts  `toml:"boosts"`
	Session Session `toml:"session"`
}

// Index controls fuzzy matching tolerances and field weighting.
type Index struct {
	// Threshold is the fuzziness tolerance: 0.0 requires an exact match,
	// 1.0 matches anything. Field scores above it are discarded.
	Threshold float64 `toml:"threshold"`

	// Distance caps how far into a field matching scans. Ignored when
	// IgnoreLocation is set, which it is by default so mid-string matches
	// score equal to prefix matches.
	Distance       int  `toml:"distance"`
	IgnoreLocation bool `toml:"ignore_location"`

	// MinMatchLength discards match spans shorter than this many characters.
	MinMatchLength int `toml:"min_match_length"`

	// FieldNormWeight scales the field-length normalization penalty.
	// Zero disables normalization entirely.
	FieldNormWeight float64 `toml:"field_norm_weight"`

	MaxResults int `toml:"max_results"`

	Weights FieldWeights `toml:"weights"`
}

// FieldWeights is the per-field weight table for multi-field matching.
type FieldWeights struct {
	Question    float64 `toml:"question"`
	Answer      float64 `toml:"answer"`
	Keywords    float64 `toml:"keywords"`
	Tags        float64 `toml:"tags"`
	Category    float64 `toml:"category"`
	Subcategory float64 `toml:"subcategory"`
}

// Total returns the sum of all field weights.
func (w FieldWeights) Total() float64 {
	return w.Question + w.Answer + w.Keywords + w.Tags + w.Category + w.Subcategory
}

// For returns the weight configured for a field.
func (w FieldWeights) For(f types.MatchField) float64 {
	switch f {
	case types.FieldQuestion:
		return w.Question
	case types.FieldAnswer:
		return w.Answer
	case types.FieldKeywords:
		return w.Keywords
	case types.FieldTags:
		return w.Tags
	case types.FieldCategory:
		return w.Category
	case types.FieldSubcategory:
		return w.Subcategory
	}
	return 0
}

// Boosts controls how curatorial metadata perturbs the raw fuzzy score.
// BoostRecent and BoostFeatured are independent switches; neither implies
// the other.
type Boosts struct {
	BoostRecent   bool `toml:"boost_recent"`
	BoostFeatured bool `toml:"boost_featured"`

	// ClientSegmentBoost, when set, boosts content targeted at that
	// segment even if the caller passes no segment filter.
	ClientSegmentBoost types.Segment `toml:"client_segment_boost"`

	CategoryWeight  float64 `toml:"category_weight"`
	PriorityWeight  float64 `toml:"priority_weight"`
	TextMatchWeight float64 `toml:"text_match_weight"`

	// FeaturedMultiplier is applied to featured results. Scores rank
	// ascending, so a multiplier below 1.0 nudges featured results up.
	FeaturedMultiplier float64 `toml:"featured_multiplier"`

	RecencyWindowDays int     `toml:"recency_window_days"`
	RecencyCeiling    float64 `toml:"recency_ceiling"`
}

// Session controls the client-side orchestration layer.
type Session struct {
	DebounceMs          int  `toml:"debounce_ms"`
	MinQueryLength      int  `toml:"min_query_length"`
	MaxSuggestions      int  `toml:"max_suggestions"`
	AutoSearch          bool `toml:"auto_search"`
	PerformanceTracking bool `toml:"performance_tracking"`
}

// Default returns the configuration tuned for the production FAQ corpus.
func Default() *Config {
	return &Config{
		Index: Index{
			Threshold:       0.4,
			Distance:        100,
			IgnoreLocation:  true,
			MinMatchLength:  types.DefaultMinMatchLength,
			FieldNormWeight: 1,
			MaxResults:      types.DefaultMaxResults,
			Weights: FieldWeights{
				Question:    0.40,
				Answer:      0.30,
				Keywords:    0.15,
				Tags:        0.10,
				Category:    0.03,
				Subcategory: 0.02,
			},
		},
		Boosts: Boosts{
			BoostRecent:        true,
			BoostFeatured:      true,
			CategoryWeight:     DefaultCategoryBoostWeight,
			PriorityWeight:     DefaultPriorityBoostWeight,
			TextMatchWeight:    DefaultTextMatchBoostWeight,
			FeaturedMultiplier: DefaultFeaturedMultiplier,
			RecencyWindowDays:  DefaultRecencyWindowDays,
			RecencyCeiling:     DefaultRecencyCeiling,
		},
		Session: Session{
			DebounceMs:          150,
			MinQueryLength:      2,
			MaxSuggestions:      5,
			AutoSearch:          true,
			PerformanceTracking: true,
		},
	}
}

// Validate checks that configuration values are within usable ranges.
func (c *Config) Validate() error {
	if c.Index.Threshold < 0 || c.Index.Threshold > 1 {
		return configError("index.threshold", c.Index.Threshold, "must be in [0,1]")
	}
	if c.Index.MinMatchLength < 1 {
		return configError("index.min_match_length", c.Index.MinMatchLength, "must be at least 1")
	}
	if c.Index.MaxResults < 1 {
		return configError("index.max_results", c.Index.MaxResults, "must be positive")
	}
	if c.Index.FieldNormWeight < 0 {
		return configError("index.field_norm_weight", c.Index.FieldNormWeight, "must not be negative")
	}
	if c.Index.Weights.Total() <= 0 {
		return configError("index.weights", c.Index.Weights.Total(), "must sum to a positive value")
	}
	if c.Boosts.FeaturedMultiplier <= 0 {
		return configError("boosts.featured_multiplier", c.Boosts.FeaturedMultiplier, "must be positive")
	}
	if c.Boosts.RecencyWindowDays < 1 {
		return configError("boosts.recency_window_days", c.Boosts.RecencyWindowDays, "must be at least one day")
	}
	if c.Session.DebounceMs < 0 {
		return configError("session.debounce_ms", c.Session.DebounceMs, "must not be negative")
	}
	if c.Session.MinQueryLength < 1 {
		return configError("session.min_query_length", c.Session.MinQueryLength, "must be at least 1")
	}
	if c.Session.MaxSuggestions < 1 {
		return configError("session.max_suggestions", c.Session.MaxSuggestions, "must be at least 1")
	}
	return nil
}

func configError(field string, value any, constraint string) error {
	return faqerrors.NewConfigError(field, fmt.Sprintf("%v", value), errors.New(constraint))
}

// Load reads configuration from a .toml or .kdl file, layered over
// defaults. A missing path is not an error: defaults are returned so the
// engine works out of the box.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	var cfg *Config
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		cfg, err = loadKDL(path)
	case ".toml":
		cfg, err = loadTOML(path)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .kdl or .toml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func loadTOML(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return cfg, nil
}
